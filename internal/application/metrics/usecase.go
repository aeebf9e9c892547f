// Package metrics contiene el agregador de métricas derivadas: recalcula
// velocidad, rotación y promedios por producto y el rollup por categoría a
// partir del estado actual de las entidades y el histórico del ledger.
// No escribe nunca en el ledger.
package metrics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// periodDays ventana de cálculo para promedios y rotación.
// Constante documentada como configuración (misma ventana que el original).
const periodDays = entity.DefaultTurnoverPeriod

// AggregatorUseCase recalcula métricas de producto y rollups de categoría.
// El recálculo es idempotente dado el mismo estado del ledger, por lo que un
// caller puede reintentarlo sin efectos acumulativos.
type AggregatorUseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ledgerRepo   repository.LedgerRepository
}

// NewAggregatorUseCase construye el agregador.
func NewAggregatorUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	ledgerRepo repository.LedgerRepository,
) *AggregatorUseCase {
	return &AggregatorUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ledgerRepo:   ledgerRepo,
	}
}

// RecomputeProductMetrics recalcula promedio diario de ventas, velocidad y
// rotación del producto desde el ledger, y persiste el resultado.
func (uc *AggregatorUseCase) RecomputeProductMetrics(ctx context.Context, productID string) (*entity.ProductMetrics, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	from := now.AddDate(0, 0, -periodDays)
	outQty, err := uc.ledgerRepo.SumQuantity(ctx, productID, entity.LedgerTypeOUT, from, now)
	if err != nil {
		return nil, err
	}

	metrics := product.Metrics
	metrics.AvgDailySales = float64(outQty) / float64(periodDays)
	metrics.TurnoverRate = product.TurnoverRate(periodDays)
	velocity := entity.ClassifyVelocity(metrics.AvgDailySales)

	if err := uc.productRepo.UpdateMetrics(ctx, productID, metrics, velocity); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// RefreshProduct implementa ledger.MetricsRefresher.
func (uc *AggregatorUseCase) RefreshProduct(ctx context.Context, productID string) error {
	_, err := uc.RecomputeProductMetrics(ctx, productID)
	return err
}

// RecomputeCategoryMetrics recalcula el rollup de la categoría sobre sus
// productos activos: total de productos, valor total a precio de venta,
// rotación promedio y días en stock promedio. Con cero productos el rollup
// queda en ceros (nunca NaN).
func (uc *AggregatorUseCase) RecomputeCategoryMetrics(ctx context.Context, categoryID string) (*entity.CategoryMetrics, error) {
	category, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}

	products, err := uc.productRepo.ListByCategory(ctx, categoryID, true)
	if err != nil {
		return nil, err
	}

	rollup := RollupCategoryMetrics(products)
	if err := uc.categoryRepo.UpdateMetrics(ctx, categoryID, rollup); err != nil {
		return nil, err
	}
	return &rollup, nil
}

// RollupCategoryMetrics cálculo puro del rollup (sin persistencia).
func RollupCategoryMetrics(products []*entity.Product) entity.CategoryMetrics {
	rollup := entity.CategoryMetrics{
		TotalProducts: len(products),
		TotalValue:    decimal.Zero,
	}
	if len(products) == 0 {
		return rollup
	}

	var turnoverSum float64
	var stockDaysSum float64
	var stockDaysCount int
	for _, p := range products {
		rollup.TotalValue = rollup.TotalValue.Add(p.StockValue())
		turnoverSum += p.TurnoverRate(periodDays)
		if p.Metrics.AvgDailySales > 0 {
			stockDaysSum += float64(p.CurrentStock) / p.Metrics.AvgDailySales
			stockDaysCount++
		}
	}
	rollup.AvgTurnoverRate = turnoverSum / float64(len(products))
	if stockDaysCount > 0 {
		rollup.AvgDaysInStock = stockDaysSum / float64(stockDaysCount)
	}
	return rollup
}
