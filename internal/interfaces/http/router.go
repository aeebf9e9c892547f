package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/forecast"
	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/application/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/application/report"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	CategoryUC  *usecase.CategoryUseCase
	Mutator     *ledger.ApplyStockChangeUseCase
	Aggregator  *metrics.AggregatorUseCase
	AnalyticsUC *analytics.UseCase
	Estimator   *forecast.EstimatorUseCase
	ReportUC    *report.LowStockReportUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Products + ledger
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Mutator, deps.Aggregator)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	// Alerts van antes de /:id para que fiber no capture "alerts" como id.
	products.Get("/alerts/low-stock", productHandler.ListLowStock)
	products.Get("/alerts/reorder", productHandler.ListNeedingReorder)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)
	products.Post("/:id/stock", productHandler.ChangeStock)
	products.Get("/:id/transactions", productHandler.ListTransactions)
	products.Post("/:id/metrics/recompute", productHandler.RecomputeMetrics)

	// Categories
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.Aggregator)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)
	categories.Post("/:id/metrics/recompute", categoryHandler.RecomputeMetrics)

	// Analytics
	analyticsGroup := api.Group("/analytics")
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsUC, deps.Estimator)
	analyticsGroup.Get("/dashboard", analyticsHandler.Dashboard)
	analyticsGroup.Get("/inventory-movement", analyticsHandler.InventoryMovement)
	analyticsGroup.Get("/demand-prediction/:productId", analyticsHandler.DemandPrediction)
	analyticsGroup.Get("/imo-analysis", analyticsHandler.IMOAnalysis)
	analyticsGroup.Get("/recent-transactions", analyticsHandler.RecentTransactions)

	// Reports
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/low-stock.pdf", reportHandler.LowStockPDF)
}
