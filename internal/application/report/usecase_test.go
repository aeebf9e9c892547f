package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/report"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// fakeGenerator captura los ítems que recibiría el PDF.
type fakeGenerator struct {
	items []report.LowStockItem
}

func (f *fakeGenerator) GenerateLowStockReport(_ context.Context, items []report.LowStockItem, _ time.Time) ([]byte, error) {
	f.items = items
	return []byte("%PDF-fake"), nil
}

func seed(t *testing.T, store *memory.Store, id, sku string, stock, reorderPoint, suggestedFromForecast int) {
	t.Helper()
	err := memory.NewProductRepository(store).Create(context.Background(), &entity.Product{
		ID: id, SKU: sku, Name: "Producto " + sku,
		CurrentStock: stock,
		Thresholds: entity.Thresholds{
			Min: 1, Max: 100, ReorderPoint: reorderPoint, CriticalLevel: 1,
		},
		Predictions: entity.Predictions{SuggestedReorderQty: suggestedFromForecast},
		IsActive:    true,
	})
	require.NoError(t, err)
}

func TestGenerate_SoloProductosPorReponer(t *testing.T) {
	store := memory.NewStore()
	gen := &fakeGenerator{}
	uc := report.NewLowStockReportUseCase(memory.NewProductRepository(store), gen)

	seed(t, store, "p-1", "SKU-1", 5, 20, 0)  // déficit 15
	seed(t, store, "p-2", "SKU-2", 18, 20, 0) // déficit 2
	seed(t, store, "p-3", "SKU-3", 50, 20, 0) // no requiere

	out, err := uc.Generate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	require.Len(t, gen.items, 2, "solo los productos en o bajo el punto de reorden")
	assert.Equal(t, "SKU-1", gen.items[0].SKU, "ordenados por déficit descendente")
	assert.Equal(t, "SKU-2", gen.items[1].SKU)
}

func TestGenerate_CantidadSugerida(t *testing.T) {
	store := memory.NewStore()
	gen := &fakeGenerator{}
	uc := report.NewLowStockReportUseCase(memory.NewProductRepository(store), gen)

	// Con proyección: usa la cantidad del estimador.
	seed(t, store, "p-1", "SKU-1", 5, 20, 42)
	// Sin proyección: ceil(20 * 1.5) - 5 = 25.
	seed(t, store, "p-2", "SKU-2", 5, 20, 0)

	_, err := uc.Generate(context.Background())
	require.NoError(t, err)

	bySKU := map[string]int{}
	for _, item := range gen.items {
		bySKU[item.SKU] = item.SuggestedQty
	}
	assert.Equal(t, 42, bySKU["SKU-1"], "la proyección de demanda tiene prioridad")
	assert.Equal(t, 25, bySKU["SKU-2"], "sin proyección se usa el stock ideal")
}
