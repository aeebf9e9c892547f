// Package analytics contiene los casos de uso de lectura para el dashboard
// de inventario: resumen general, movimientos agrupados, análisis IMO y
// transacciones recientes.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// Agrupaciones soportadas por el resumen de movimientos.
const (
	GroupByCategory = "category"
	GroupByProduct  = "product"
)

const defaultRecentLimit = 10

// UseCase casos de uso de analítica. Lecturas sobre productos, categorías y
// ledger; el único efecto de escritura es el refresco lazy de los rollups de
// categoría que ya hace el agregador.
type UseCase struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ledgerRepo   repository.LedgerRepository
	aggregator   *metrics.AggregatorUseCase
	statsCache   StatsCache // puede ser nil (sin cache)
	log          *logger.Logger
}

// NewUseCase construye los casos de uso de analítica.
func NewUseCase(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	ledgerRepo repository.LedgerRepository,
	aggregator *metrics.AggregatorUseCase,
	statsCache StatsCache,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ledgerRepo:   ledgerRepo,
		aggregator:   aggregator,
		statsCache:   statsCache,
		log:          log,
	}
}

// GetDashboardStats resumen del inventario activo: conteos por estado,
// valor total, pendientes de reorden y distribución de velocidad.
// Cache-aside con TTL corto; un fallo del cache degrada a recomputar.
func (uc *UseCase) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	if uc.statsCache != nil {
		cached, err := uc.statsCache.Get(ctx)
		if err != nil {
			uc.log.Warn().Err(err).Msg("lectura del cache de dashboard falló")
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStatsDTO{
		TotalProducts: len(products),
		TotalValue:    decimal.Zero,
	}
	for _, p := range products {
		switch p.Status() {
		case entity.StatusInStock:
			stats.InStock++
		case entity.StatusLowStock:
			stats.LowStock++
		case entity.StatusCritical:
			stats.Critical++
		case entity.StatusOutOfStock:
			stats.OutOfStock++
		}
		stats.TotalValue = stats.TotalValue.Add(p.StockValue())
		if p.NeedsReorder() {
			stats.NeedsReorder++
		}
		switch p.Velocity {
		case entity.VelocityHigh:
			stats.VelocityDistribution.High++
		case entity.VelocityLow:
			stats.VelocityDistribution.Low++
		default:
			stats.VelocityDistribution.Medium++
		}
	}

	if uc.statsCache != nil {
		if err := uc.statsCache.Set(ctx, stats); err != nil {
			uc.log.Warn().Err(err).Msg("escritura del cache de dashboard falló")
		}
	}
	return stats, nil
}

// GetMovementSummary agrupa los movimientos del período por categoría o por
// producto: entradas, salidas, transacciones y salidas valoradas a precio de
// venta. La agrupación por categoría se enriquece con el rollup recomputado.
func (uc *UseCase) GetMovementSummary(ctx context.Context, from, to *time.Time, groupBy string) ([]dto.MovementSummaryDTO, error) {
	if groupBy != GroupByProduct {
		groupBy = GroupByCategory
	}

	records, err := uc.ledgerRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	products, err := uc.productRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	productByID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	categoryNames := make(map[string]string)
	categoryIDByName := make(map[string]string)
	if groupBy == GroupByCategory {
		categories, err := uc.categoryRepo.List(ctx, false)
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			categoryNames[c.ID] = c.Name
			categoryIDByName[c.Name] = c.ID
		}
	}

	grouped := make(map[string]*dto.MovementSummaryDTO)
	for _, r := range records {
		product, ok := productByID[r.ProductID]
		if !ok {
			continue
		}

		key := product.Name
		if groupBy == GroupByCategory {
			key = categoryNames[product.CategoryID]
			if key == "" {
				key = "Uncategorized"
			}
		}

		g, ok := grouped[key]
		if !ok {
			g = &dto.MovementSummaryDTO{Name: key, Value: decimal.Zero}
			grouped[key] = g
		}
		g.TotalTransactions++
		switch r.Type {
		case entity.LedgerTypeIN:
			g.TotalIn += r.Quantity
		case entity.LedgerTypeOUT:
			g.TotalOut += r.Quantity
			g.Value = g.Value.Add(product.Price.Selling.Mul(decimal.NewFromInt(int64(r.Quantity))))
		}
	}

	// Enriquecer cada categoría presente con su rollup recalculado.
	if groupBy == GroupByCategory {
		for name, g := range grouped {
			categoryID, ok := categoryIDByName[name]
			if !ok {
				continue
			}
			rollup, err := uc.aggregator.RecomputeCategoryMetrics(ctx, categoryID)
			if err != nil {
				uc.log.Warn().Err(err).Str("category_id", categoryID).Msg("rollup de categoría falló")
				continue
			}
			g.TurnoverRate = rollup.AvgTurnoverRate
			g.AvgDaysInStock = rollup.AvgDaysInStock
		}
	}

	result := make([]dto.MovementSummaryDTO, 0, len(grouped))
	for _, g := range grouped {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// GetIMOAnalysis análisis de optimización de movimiento por categoría activa:
// rotación, días en stock, valor y un score 0-100 proporcional a la rotación.
func (uc *UseCase) GetIMOAnalysis(ctx context.Context) ([]dto.IMOAnalysisDTO, error) {
	categories, err := uc.categoryRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}

	result := make([]dto.IMOAnalysisDTO, 0, len(categories))
	for _, c := range categories {
		rollup, err := uc.aggregator.RecomputeCategoryMetrics(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		score := 0
		if rollup.TotalProducts > 0 {
			score = int(math.Min(100, math.Round(rollup.AvgTurnoverRate*10)))
		}
		result = append(result, dto.IMOAnalysisDTO{
			Category:          c.Name,
			CategoryID:        c.ID,
			TurnoverRate:      rollup.AvgTurnoverRate,
			AvgDaysInStock:    rollup.AvgDaysInStock,
			Value:             rollup.TotalValue,
			ProductCount:      rollup.TotalProducts,
			OptimizationScore: score,
		})
	}
	return result, nil
}

// GetRecentLedger últimos movimientos del ledger, más recientes primero,
// enriquecidos con nombre y SKU del producto.
func (uc *UseCase) GetRecentLedger(ctx context.Context, limit int) ([]dto.RecentLedgerEntryDTO, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	records, err := uc.ledgerRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]dto.RecentLedgerEntryDTO, 0, len(records))
	for _, r := range records {
		entry := dto.RecentLedgerEntryDTO{LedgerRecordDTO: dto.NewLedgerRecordDTO(r)}
		if product, err := uc.productRepo.GetByID(ctx, r.ProductID); err == nil && product != nil {
			entry.ProductName = product.Name
			entry.ProductSKU = product.SKU
		}
		result = append(result, entry)
	}
	return result, nil
}
