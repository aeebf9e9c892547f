package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeStatsCache cache en memoria para verificar el camino cache-aside.
type fakeStatsCache struct {
	stored *dto.DashboardStatsDTO
	hits   int
	sets   int
}

func (f *fakeStatsCache) Get(context.Context) (*dto.DashboardStatsDTO, error) {
	if f.stored != nil {
		f.hits++
	}
	return f.stored, nil
}

func (f *fakeStatsCache) Set(_ context.Context, stats *dto.DashboardStatsDTO) error {
	f.stored = stats
	f.sets++
	return nil
}

func newAnalyticsUC(t *testing.T, cache analytics.StatsCache) (*analytics.UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	aggregator := metrics.NewAggregatorUseCase(productRepo, categoryRepo, ledgerRepo)
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return analytics.NewUseCase(productRepo, categoryRepo, ledgerRepo, aggregator, cache, log), store
}

func seedProduct(t *testing.T, store *memory.Store, id, sku, categoryID string, stock int, selling int64, velocity string) {
	t.Helper()
	err := memory.NewProductRepository(store).Create(context.Background(), &entity.Product{
		ID: id, SKU: sku, Name: "Producto " + sku, CategoryID: categoryID,
		CurrentStock: stock,
		Thresholds: entity.Thresholds{
			Min:           entity.DefaultThresholdMin,
			Max:           entity.DefaultThresholdMax,
			ReorderPoint:  entity.DefaultReorderPoint,
			CriticalLevel: entity.DefaultCriticalLevel,
		},
		Price:    entity.Price{Selling: decimal.NewFromInt(selling)},
		Velocity: velocity,
		IsActive: true,
	})
	require.NoError(t, err)
}

func seedRecord(t *testing.T, store *memory.Store, productID, typ string, qty int, createdAt time.Time) {
	t.Helper()
	err := memory.NewLedgerRepository(store).Append(context.Background(), &entity.LedgerRecord{
		ID: uuid.New().String(), ProductID: productID, Type: typ,
		Quantity: qty, CreatedAt: createdAt,
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetDashboardStats
// ──────────────────────────────────────────────────────────────────────────────

func TestGetDashboardStats_ConteosYValor(t *testing.T) {
	uc, store := newAnalyticsUC(t, nil)
	ctx := context.Background()

	seedProduct(t, store, "p-1", "SKU-1", "", 50, 10, entity.VelocityHigh)  // In Stock
	seedProduct(t, store, "p-2", "SKU-2", "", 8, 20, entity.VelocityLow)    // Low Stock
	seedProduct(t, store, "p-3", "SKU-3", "", 3, 5, entity.VelocityMedium)  // Critical
	seedProduct(t, store, "p-4", "SKU-4", "", 0, 30, entity.VelocityMedium) // Out of Stock

	stats, err := uc.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalProducts)
	assert.Equal(t, 1, stats.InStock)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, 1, stats.Critical)
	assert.Equal(t, 1, stats.OutOfStock)
	// 50*10 + 8*20 + 3*5 + 0*30 = 675
	assert.True(t, decimal.NewFromInt(675).Equal(stats.TotalValue))
	assert.Equal(t, 3, stats.NeedsReorder, "stock <= 20 requiere reorden")
	assert.Equal(t, 1, stats.VelocityDistribution.High)
	assert.Equal(t, 2, stats.VelocityDistribution.Medium)
	assert.Equal(t, 1, stats.VelocityDistribution.Low)
}

func TestGetDashboardStats_CacheAside(t *testing.T) {
	cache := &fakeStatsCache{}
	uc, store := newAnalyticsUC(t, cache)
	ctx := context.Background()

	seedProduct(t, store, "p-1", "SKU-1", "", 50, 10, entity.VelocityHigh)

	// Primer acceso: miss, computa y escribe al cache.
	first, err := uc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Segundo acceso: hit, devuelve lo cacheado.
	second, err := uc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets, "un hit no rescribe el cache")
}

// ──────────────────────────────────────────────────────────────────────────────
// GetMovementSummary
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMovementSummary_AgrupaPorCategoria(t *testing.T) {
	uc, store := newAnalyticsUC(t, nil)
	ctx := context.Background()

	require.NoError(t, memory.NewCategoryRepository(store).Create(ctx, &entity.Category{
		ID: "c-1", Name: "Electrónica", Code: "ELE", IsActive: true,
	}))
	seedProduct(t, store, "p-1", "SKU-1", "c-1", 50, 10, entity.VelocityMedium)
	seedProduct(t, store, "p-2", "SKU-2", "c-1", 30, 20, entity.VelocityMedium)

	now := time.Now()
	seedRecord(t, store, "p-1", entity.LedgerTypeIN, 10, now.Add(-2*time.Hour))
	seedRecord(t, store, "p-1", entity.LedgerTypeOUT, 4, now.Add(-1*time.Hour))
	seedRecord(t, store, "p-2", entity.LedgerTypeOUT, 2, now.Add(-30*time.Minute))

	out, err := uc.GetMovementSummary(ctx, nil, nil, analytics.GroupByCategory)
	require.NoError(t, err)
	require.Len(t, out, 1)

	g := out[0]
	assert.Equal(t, "Electrónica", g.Name)
	assert.Equal(t, 10, g.TotalIn)
	assert.Equal(t, 6, g.TotalOut)
	assert.Equal(t, 3, g.TotalTransactions)
	// Salidas valoradas a precio de venta: 4*10 + 2*20 = 80.
	assert.True(t, decimal.NewFromInt(80).Equal(g.Value))
}

func TestGetMovementSummary_AgrupaPorProducto(t *testing.T) {
	uc, store := newAnalyticsUC(t, nil)
	ctx := context.Background()

	seedProduct(t, store, "p-1", "SKU-1", "", 50, 10, entity.VelocityMedium)
	seedProduct(t, store, "p-2", "SKU-2", "", 30, 20, entity.VelocityMedium)

	now := time.Now()
	seedRecord(t, store, "p-1", entity.LedgerTypeOUT, 4, now.Add(-1*time.Hour))
	seedRecord(t, store, "p-2", entity.LedgerTypeIN, 7, now.Add(-1*time.Hour))

	out, err := uc.GetMovementSummary(ctx, nil, nil, analytics.GroupByProduct)
	require.NoError(t, err)
	require.Len(t, out, 2, "una fila por producto con movimientos")
}

func TestGetMovementSummary_RespetaElPeriodo(t *testing.T) {
	uc, store := newAnalyticsUC(t, nil)
	ctx := context.Background()

	seedProduct(t, store, "p-1", "SKU-1", "", 50, 10, entity.VelocityMedium)

	now := time.Now()
	seedRecord(t, store, "p-1", entity.LedgerTypeOUT, 4, now.Add(-time.Hour))
	seedRecord(t, store, "p-1", entity.LedgerTypeOUT, 9, now.AddDate(0, 0, -40))

	from := now.AddDate(0, 0, -7)
	out, err := uc.GetMovementSummary(ctx, &from, nil, analytics.GroupByProduct)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].TotalOut, "los movimientos fuera del período no cuentan")
}

// ──────────────────────────────────────────────────────────────────────────────
// GetIMOAnalysis
// ──────────────────────────────────────────────────────────────────────────────

func TestGetIMOAnalysis_CategoriaVaciaConScoreCero(t *testing.T) {
	uc, store := newAnalyticsUC(t, nil)
	ctx := context.Background()

	require.NoError(t, memory.NewCategoryRepository(store).Create(ctx, &entity.Category{
		ID: "c-1", Name: "Vacía", Code: "VAC", IsActive: true,
	}))

	out, err := uc.GetIMOAnalysis(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].OptimizationScore)
	assert.Equal(t, 0, out[0].ProductCount)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetRecentLedger
// ──────────────────────────────────────────────────────────────────────────────

func TestGetRecentLedger_EnriqueceConProducto(t *testing.T) {
	uc, store := newAnalyticsUC(t, nil)
	ctx := context.Background()

	seedProduct(t, store, "p-1", "SKU-1", "", 50, 10, entity.VelocityMedium)
	now := time.Now()
	seedRecord(t, store, "p-1", entity.LedgerTypeOUT, 4, now.Add(-2*time.Hour))
	seedRecord(t, store, "p-1", entity.LedgerTypeIN, 9, now.Add(-1*time.Hour))

	out, err := uc.GetRecentLedger(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, entity.LedgerTypeIN, out[0].Type, "más recientes primero")
	assert.Equal(t, "SKU-1", out[0].ProductSKU)
	assert.Equal(t, "Producto SKU-1", out[0].ProductName)
}

func TestGetRecentLedger_RespetaElLimite(t *testing.T) {
	uc, store := newAnalyticsUC(t, nil)
	ctx := context.Background()

	seedProduct(t, store, "p-1", "SKU-1", "", 50, 10, entity.VelocityMedium)
	for i := 0; i < 5; i++ {
		seedRecord(t, store, "p-1", entity.LedgerTypeOUT, 1, time.Now().Add(-time.Duration(i)*time.Minute))
	}

	out, err := uc.GetRecentLedger(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}
