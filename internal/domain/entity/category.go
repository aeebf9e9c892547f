package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryMetrics rollup derivado sobre los productos de la categoría.
// Es un cache recomputable (lazy), no una fuente autoritativa: se recalcula
// bajo demanda desde los productos activos.
type CategoryMetrics struct {
	TotalProducts   int
	TotalValue      decimal.Decimal
	AvgTurnoverRate float64
	AvgDaysInStock  float64
}

// Category agrupa productos y acumula sus métricas.
type Category struct {
	ID          string
	Name        string
	Code        string // prefijo en mayúsculas, máx 3 caracteres
	Description string
	ParentID    string
	Metrics     CategoryMetrics
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidCategoryCode verifica el formato del código de categoría.
func ValidCategoryCode(code string) bool {
	return len(code) > 0 && len(code) <= 3
}
