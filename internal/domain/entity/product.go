package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clasificación de velocidad de venta.
const (
	VelocityHigh   = "High"
	VelocityMedium = "Medium"
	VelocityLow    = "Low"
)

// Estados derivados del stock frente a los umbrales. Nunca se persisten:
// se recalculan en lectura para evitar que el estado cacheado se desfase del stock real.
const (
	StatusOutOfStock  = "Out of Stock"
	StatusCritical    = "Critical"
	StatusLowStock    = "Low Stock"
	StatusReorderSoon = "Reorder Soon"
	StatusInStock     = "In Stock"
)

// Umbrales por defecto al crear un producto (mismos valores que el modelo original).
const (
	DefaultThresholdMin     = 10
	DefaultThresholdMax     = 100
	DefaultReorderPoint     = 20
	DefaultCriticalLevel    = 5
	DefaultSupplierLeadTime = 7
	DefaultTurnoverPeriod   = 30 // días
	VelocityHighThreshold   = 10 // ventas diarias promedio
	VelocityMediumThreshold = 5
)

// Thresholds niveles de stock para el cálculo automático de estado.
// Invariante: Min <= ReorderPoint <= Max y CriticalLevel <= Min.
type Thresholds struct {
	Min           int
	Max           int
	ReorderPoint  int
	CriticalLevel int
}

// Valid verifica el orden de los umbrales.
func (t Thresholds) Valid() bool {
	return t.Min <= t.ReorderPoint && t.ReorderPoint <= t.Max && t.CriticalLevel <= t.Min
}

// Price precios del producto.
type Price struct {
	Cost     decimal.Decimal
	Selling  decimal.Decimal
	Currency string
}

// Supplier información del proveedor.
type Supplier struct {
	Name         string
	Email        string
	Phone        string
	LeadTimeDays int
}

// ProductMetrics métricas derivadas del histórico de movimientos.
// TotalSold/TotalOrdered los mantiene el mutador de stock; el resto los
// recalcula el agregador de métricas.
type ProductMetrics struct {
	AvgDailySales float64
	TurnoverRate  float64
	TotalSold     int
	TotalOrdered  int
	LastRestocked *time.Time
	LastSold      *time.Time
}

// Predictions proyección de demanda calculada por el estimador.
type Predictions struct {
	NextPeriodDemand    int
	Confidence          int // 0-100
	SuggestedReorderQty int
	PredictedStockout   *time.Time
}

// Product representa un producto o SKU del inventario.
// CurrentStock solo lo escribe el mutador de stock: siempre es igual a la suma
// de los deltas firmados del ledger del producto desde su creación.
type Product struct {
	ID           string
	SKU          string // único, en mayúsculas
	CategoryID   string
	Name         string
	Description  string
	CurrentStock int
	Thresholds   Thresholds
	Price        Price
	Supplier     Supplier
	Velocity     string // High, Medium, Low
	Metrics      ProductMetrics
	Predictions  Predictions
	IsActive     bool
	Version      int // contador de concurrencia optimista
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status deriva el estado del stock frente a los umbrales. El orden de
// precedencia es exacto: agotado, crítico, bajo, por reordenar, en stock.
func (p *Product) Status() string {
	switch {
	case p.CurrentStock == 0:
		return StatusOutOfStock
	case p.CurrentStock <= p.Thresholds.CriticalLevel:
		return StatusCritical
	case p.CurrentStock <= p.Thresholds.Min:
		return StatusLowStock
	case p.CurrentStock <= p.Thresholds.ReorderPoint:
		return StatusReorderSoon
	default:
		return StatusInStock
	}
}

// StockPercentage porcentaje del stock frente al máximo, tope en 100.
func (p *Product) StockPercentage() float64 {
	if p.Thresholds.Max <= 0 {
		return 0
	}
	pct := float64(p.CurrentStock) / float64(p.Thresholds.Max) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// NeedsReorder indica si el stock está en o bajo el punto de reorden.
func (p *Product) NeedsReorder() bool {
	return p.CurrentStock <= p.Thresholds.ReorderPoint
}

// TurnoverRate tasa de rotación: (TotalSold / período) / CurrentStock.
// Devuelve 0 con stock en cero (sin división por cero).
func (p *Product) TurnoverRate(periodDays int) float64 {
	if p.CurrentStock == 0 || periodDays <= 0 {
		return 0
	}
	return (float64(p.Metrics.TotalSold) / float64(periodDays)) / float64(p.CurrentStock)
}

// StockValue valor del stock al precio de venta.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Selling.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

// ClassifyVelocity clasifica la velocidad de venta según el promedio diario.
// Umbrales fijos: >10 High, >5 Medium, resto Low.
func ClassifyVelocity(avgDailySales float64) string {
	switch {
	case avgDailySales > VelocityHighThreshold:
		return VelocityHigh
	case avgDailySales > VelocityMediumThreshold:
		return VelocityMedium
	default:
		return VelocityLow
	}
}
