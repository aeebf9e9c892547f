package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateProductRequest cuerpo para crear un producto.
type CreateProductRequest struct {
	SKU           string          `json:"sku"`
	CategoryID    string          `json:"category_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	InitialStock  int             `json:"initial_stock"`
	MinThreshold  *int            `json:"min_threshold"`
	MaxThreshold  *int            `json:"max_threshold"`
	ReorderPoint  *int            `json:"reorder_point"`
	CriticalLevel *int            `json:"critical_level"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Currency      string          `json:"currency"`
	SupplierName  string          `json:"supplier_name"`
	SupplierEmail string          `json:"supplier_email"`
	SupplierPhone string          `json:"supplier_phone"`
	LeadTimeDays  *int            `json:"lead_time_days"`
	PerformedBy   string          `json:"performed_by"`
}

// UpdateProductRequest cuerpo para actualizar un producto. Campos nil = sin cambio.
// Un cambio de CurrentStock pasa por el mutador de stock y genera su registro
// en el ledger (nunca se escribe el stock directamente).
type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	CategoryID        *string          `json:"category_id"`
	CurrentStock      *int             `json:"current_stock"`
	StockChangeReason string           `json:"stock_change_reason"`
	MinThreshold      *int             `json:"min_threshold"`
	MaxThreshold      *int             `json:"max_threshold"`
	ReorderPoint      *int             `json:"reorder_point"`
	CriticalLevel     *int             `json:"critical_level"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	SellingPrice      *decimal.Decimal `json:"selling_price"`
	SupplierName      *string          `json:"supplier_name"`
	PerformedBy       string           `json:"performed_by"`
}

// ProductDTO producto con sus campos derivados (status, stockPercentage)
// calculados en lectura.
type ProductDTO struct {
	ID              string            `json:"id"`
	SKU             string            `json:"sku"`
	CategoryID      string            `json:"category_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	CurrentStock    int               `json:"current_stock"`
	Status          string            `json:"status"`
	StockPercentage float64           `json:"stock_percentage"`
	NeedsReorder    bool              `json:"needs_reorder"`
	Thresholds      ThresholdsDTO     `json:"thresholds"`
	CostPrice       decimal.Decimal   `json:"cost_price"`
	SellingPrice    decimal.Decimal   `json:"selling_price"`
	Currency        string            `json:"currency"`
	SupplierName    string            `json:"supplier_name"`
	Velocity        string            `json:"velocity"`
	Metrics         ProductMetricsDTO `json:"metrics"`
	Predictions     PredictionsDTO    `json:"predictions"`
	IsActive        bool              `json:"is_active"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ThresholdsDTO umbrales de stock.
type ThresholdsDTO struct {
	Min           int `json:"min"`
	Max           int `json:"max"`
	ReorderPoint  int `json:"reorder_point"`
	CriticalLevel int `json:"critical_level"`
}

// ProductMetricsDTO métricas derivadas.
type ProductMetricsDTO struct {
	AvgDailySales float64    `json:"avg_daily_sales"`
	TurnoverRate  float64    `json:"turnover_rate"`
	TotalSold     int        `json:"total_sold"`
	TotalOrdered  int        `json:"total_ordered"`
	LastRestocked *time.Time `json:"last_restocked,omitempty"`
	LastSold      *time.Time `json:"last_sold,omitempty"`
}

// PredictionsDTO proyección de demanda.
type PredictionsDTO struct {
	NextPeriodDemand    int        `json:"next_period_demand"`
	Confidence          int        `json:"confidence"`
	SuggestedReorderQty int        `json:"suggested_reorder_qty"`
	PredictedStockout   *time.Time `json:"predicted_stockout,omitempty"`
}

// NewProductDTO construye el DTO con los derivados recalculados.
func NewProductDTO(p *entity.Product) ProductDTO {
	return ProductDTO{
		ID:              p.ID,
		SKU:             p.SKU,
		CategoryID:      p.CategoryID,
		Name:            p.Name,
		Description:     p.Description,
		CurrentStock:    p.CurrentStock,
		Status:          p.Status(),
		StockPercentage: p.StockPercentage(),
		NeedsReorder:    p.NeedsReorder(),
		Thresholds: ThresholdsDTO{
			Min:           p.Thresholds.Min,
			Max:           p.Thresholds.Max,
			ReorderPoint:  p.Thresholds.ReorderPoint,
			CriticalLevel: p.Thresholds.CriticalLevel,
		},
		CostPrice:    p.Price.Cost,
		SellingPrice: p.Price.Selling,
		Currency:     p.Price.Currency,
		SupplierName: p.Supplier.Name,
		Velocity:     p.Velocity,
		Metrics: ProductMetricsDTO{
			AvgDailySales: p.Metrics.AvgDailySales,
			TurnoverRate:  p.Metrics.TurnoverRate,
			TotalSold:     p.Metrics.TotalSold,
			TotalOrdered:  p.Metrics.TotalOrdered,
			LastRestocked: p.Metrics.LastRestocked,
			LastSold:      p.Metrics.LastSold,
		},
		Predictions: PredictionsDTO{
			NextPeriodDemand:    p.Predictions.NextPeriodDemand,
			Confidence:          p.Predictions.Confidence,
			SuggestedReorderQty: p.Predictions.SuggestedReorderQty,
			PredictedStockout:   p.Predictions.PredictedStockout,
		},
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CreateCategoryRequest cuerpo para crear una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
}

// UpdateCategoryRequest cuerpo para actualizar una categoría. Campos nil = sin cambio.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
}

// CategoryDTO categoría con su rollup de métricas.
type CategoryDTO struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Code        string             `json:"code"`
	Description string             `json:"description"`
	ParentID    string             `json:"parent_id,omitempty"`
	Metrics     CategoryMetricsDTO `json:"metrics"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CategoryMetricsDTO rollup derivado de la categoría.
type CategoryMetricsDTO struct {
	TotalProducts   int             `json:"total_products"`
	TotalValue      decimal.Decimal `json:"total_value"`
	AvgTurnoverRate float64         `json:"avg_turnover_rate"`
	AvgDaysInStock  float64         `json:"avg_days_in_stock"`
}

// NewCategoryDTO construye el DTO de categoría.
func NewCategoryDTO(c *entity.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		ParentID:    c.ParentID,
		Metrics: CategoryMetricsDTO{
			TotalProducts:   c.Metrics.TotalProducts,
			TotalValue:      c.Metrics.TotalValue,
			AvgTurnoverRate: c.Metrics.AvgTurnoverRate,
			AvgDaysInStock:  c.Metrics.AvgDaysInStock,
		},
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
