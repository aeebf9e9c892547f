package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/forecast"
)

// AnalyticsHandler maneja las peticiones HTTP del dashboard y la analítica.
type AnalyticsHandler struct {
	uc        *analytics.UseCase
	estimator *forecast.EstimatorUseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *analytics.UseCase, estimator *forecast.EstimatorUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc, estimator: estimator}
}

// Dashboard godoc
// @Summary      Resumen del inventario
// @Tags         analytics
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsDTO
// @Router       /api/analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	out, err := h.uc.GetDashboardStats(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// InventoryMovement godoc
// @Summary      Resumen de movimientos por período
// @Tags         analytics
// @Produce      json
// @Param        from     query  string  false  "Inicio (RFC3339 o 2006-01-02)"
// @Param        to       query  string  false  "Fin (RFC3339 o 2006-01-02)"
// @Param        group_by query  string  false  "category | product"  default(category)
// @Success      200      {array}   dto.MovementSummaryDTO
// @Failure      400      {object}  dto.ErrorResponse
// @Router       /api/analytics/inventory-movement [get]
func (h *AnalyticsHandler) InventoryMovement(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"})
	}
	out, err := h.uc.GetMovementSummary(c.Context(), from, to, c.Query("group_by", analytics.GroupByCategory))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// DemandPrediction godoc
// @Summary      Proyección de demanda del producto
// @Description  Agrupa las salidas por mes calendario, proyecta 3 meses y
//
//	persiste la predicción sobre el producto.
//
// @Tags         analytics
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        months     query  int     false  "Meses de histórico"  default(12)
// @Success      200        {object}  dto.DemandForecastDTO
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/analytics/demand-prediction/{productId} [get]
func (h *AnalyticsHandler) DemandPrediction(c *fiber.Ctx) error {
	months := c.QueryInt("months", 0)
	out, err := h.estimator.EstimateDemand(c.Context(), c.Params("productId"), months)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// IMOAnalysis godoc
// @Summary      Análisis de optimización por categoría
// @Tags         analytics
// @Produce      json
// @Success      200  {array}  dto.IMOAnalysisDTO
// @Router       /api/analytics/imo-analysis [get]
func (h *AnalyticsHandler) IMOAnalysis(c *fiber.Ctx) error {
	out, err := h.uc.GetIMOAnalysis(c.Context())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(out)
}

// RecentTransactions godoc
// @Summary      Últimos movimientos del ledger
// @Tags         analytics
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(10)
// @Success      200    {array}  dto.RecentLedgerEntryDTO
// @Router       /api/analytics/recent-transactions [get]
func (h *AnalyticsHandler) RecentTransactions(c *fiber.Ctx) error {
	out, err := h.uc.GetRecentLedger(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "transactions": out})
}

// parseTimeQuery acepta RFC3339 o fecha simple; vacío devuelve nil.
func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
