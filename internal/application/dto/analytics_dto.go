package dto

import (
	"github.com/shopspring/decimal"
)

// DashboardStatsDTO resumen del inventario para el dashboard.
type DashboardStatsDTO struct {
	TotalProducts        int                  `json:"total_products"`
	InStock              int                  `json:"in_stock"`
	LowStock             int                  `json:"low_stock"`
	Critical             int                  `json:"critical"`
	OutOfStock           int                  `json:"out_of_stock"`
	TotalValue           decimal.Decimal      `json:"total_value"`
	NeedsReorder         int                  `json:"needs_reorder"`
	VelocityDistribution VelocityDistribution `json:"velocity_distribution"`
}

// VelocityDistribution conteo de productos por velocidad de venta.
type VelocityDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// MovementSummaryDTO resumen de movimientos agrupado por categoría o producto.
type MovementSummaryDTO struct {
	Name              string          `json:"name"`
	TotalIn           int             `json:"total_in"`
	TotalOut          int             `json:"total_out"`
	TotalTransactions int             `json:"total_transactions"`
	Value             decimal.Decimal `json:"value"` // salidas valoradas a precio de venta
	TurnoverRate      float64         `json:"turnover_rate,omitempty"`
	AvgDaysInStock    float64         `json:"avg_days_in_stock,omitempty"`
}

// IMOAnalysisDTO análisis de optimización de movimiento de inventario por categoría.
type IMOAnalysisDTO struct {
	Category          string          `json:"category"`
	CategoryID        string          `json:"category_id"`
	TurnoverRate      float64         `json:"turnover_rate"`
	AvgDaysInStock    float64         `json:"avg_days_in_stock"`
	Value             decimal.Decimal `json:"value"`
	ProductCount      int             `json:"product_count"`
	OptimizationScore int             `json:"optimization_score"`
}

// RecentLedgerEntryDTO registro reciente enriquecido con el producto.
type RecentLedgerEntryDTO struct {
	LedgerRecordDTO
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
}
