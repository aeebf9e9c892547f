package forecast_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/forecast"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testProductID = "00000000-0000-0000-0000-000000000010"

func newEstimator(t *testing.T, stock int) (*forecast.EstimatorUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	err := memory.NewProductRepository(store).Create(context.Background(), &entity.Product{
		ID:           testProductID,
		SKU:          "SKU-010",
		Name:         "Producto proyectado",
		CurrentStock: stock,
		IsActive:     true,
	})
	require.NoError(t, err)
	return forecast.NewEstimatorUseCase(
		memory.NewProductRepository(store),
		memory.NewLedgerRepository(store),
	), store
}

// seedMonthlyOut agrega una salida por mes: quantities[0] en el mes más
// antiguo de la ventana y el último valor en el mes corriente.
func seedMonthlyOut(t *testing.T, store *memory.Store, quantities []int) {
	t.Helper()
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	oldest := monthStart.AddDate(0, -(len(quantities) - 1), 0)

	repo := memory.NewLedgerRepository(store)
	for i, qty := range quantities {
		if qty == 0 {
			continue
		}
		createdAt := oldest.AddDate(0, i, 0).Add(time.Minute)
		if i == len(quantities)-1 {
			// El bucket del mes corriente debe caer antes de "ahora".
			createdAt = now.Add(-time.Second)
		}
		err := repo.Append(context.Background(), &entity.LedgerRecord{
			ID:        uuid.New().String(),
			ProductID: testProductID,
			Type:      entity.LedgerTypeOUT,
			Quantity:  qty,
			CreatedAt: createdAt,
		})
		require.NoError(t, err)
	}
}

func productPredictions(t *testing.T, store *memory.Store) entity.Predictions {
	t.Helper()
	p, err := memory.NewProductRepository(store).GetByID(context.Background(), testProductID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Predictions
}

// ──────────────────────────────────────────────────────────────────────────────
// Vector exacto: buckets [10, 20, 30, 40] con ventana de 4 meses
//
//	avg   = 100/4  = 25
//	trend = (40-10)/4 = 7.5
//	mes 1 = round(25 + 7.5*5) = 63, mes 2 = 70, mes 3 = 78
//	next  = round(25 + 7.5)   = 33
// ──────────────────────────────────────────────────────────────────────────────

func TestEstimateDemand_VectorExacto(t *testing.T) {
	uc, store := newEstimator(t, 10)
	seedMonthlyOut(t, store, []int{10, 20, 30, 40})

	out, err := uc.EstimateDemand(context.Background(), testProductID, 4)
	require.NoError(t, err)

	require.Len(t, out.Historical, 7, "4 meses históricos + 3 proyectados")
	assert.InDelta(t, 25.0, out.AverageDemand, 1e-9)

	// Históricos del más antiguo al más reciente, con Actual poblado.
	for i, expected := range []int{10, 20, 30, 40} {
		require.NotNil(t, out.Historical[i].Actual)
		assert.Equal(t, expected, *out.Historical[i].Actual)
		assert.Nil(t, out.Historical[i].Predicted)
	}
	// Proyectados con Predicted poblado.
	for i, expected := range []int{63, 70, 78} {
		require.NotNil(t, out.Historical[4+i].Predicted)
		assert.Equal(t, expected, *out.Historical[4+i].Predicted)
		assert.Nil(t, out.Historical[4+i].Actual)
	}

	assert.Equal(t, 33, out.Predictions.NextPeriodDemand)
	assert.Equal(t, 75, out.Predictions.Confidence, "la confianza es un valor fijo")
	assert.Equal(t, 33*2-10, out.Predictions.SuggestedReorderQty)

	// stockout = ahora + floor(10 / (25/30)) = 12 días.
	require.NotNil(t, out.Predictions.PredictedStockout)
	days := time.Until(*out.Predictions.PredictedStockout).Hours() / 24
	assert.InDelta(t, 12, days, 0.1)
}

// Con ventana n <= 3 la tendencia no se calcula.
func TestEstimateDemand_VentanaCortaSinTendencia(t *testing.T) {
	uc, store := newEstimator(t, 10)
	seedMonthlyOut(t, store, []int{10, 20, 30})

	out, err := uc.EstimateDemand(context.Background(), testProductID, 3)
	require.NoError(t, err)

	// avg = 20, trend = 0 → cada mes proyectado es round(20) = 20.
	for i := 3; i < 6; i++ {
		require.NotNil(t, out.Historical[i].Predicted)
		assert.Equal(t, 20, *out.Historical[i].Predicted)
	}
	assert.Equal(t, 20, out.Predictions.NextPeriodDemand)
}

// Meses sin movimientos cuentan como cero en el promedio.
func TestEstimateDemand_MesesVaciosCuentanComoCero(t *testing.T) {
	uc, store := newEstimator(t, 100)
	// Solo una salida en el mes corriente; ventana de 4 meses.
	seedMonthlyOut(t, store, []int{0, 0, 0, 40})

	out, err := uc.EstimateDemand(context.Background(), testProductID, 4)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.AverageDemand, 1e-9, "el promedio incluye los meses en cero")
}

// Sin ventas no hay fecha de agotamiento proyectada.
func TestEstimateDemand_SinVentasSinStockout(t *testing.T) {
	uc, _ := newEstimator(t, 50)

	out, err := uc.EstimateDemand(context.Background(), testProductID, 4)
	require.NoError(t, err)
	assert.Nil(t, out.Predictions.PredictedStockout)
	assert.Equal(t, 0, out.Predictions.NextPeriodDemand)
}

// Con stock cero tampoco hay stockout (ya está agotado).
func TestEstimateDemand_StockCeroSinStockout(t *testing.T) {
	uc, store := newEstimator(t, 0)
	seedMonthlyOut(t, store, []int{10, 20, 30, 40})

	out, err := uc.EstimateDemand(context.Background(), testProductID, 4)
	require.NoError(t, err)
	assert.Nil(t, out.Predictions.PredictedStockout)
}

// La proyección se persiste sobre el producto (write-back).
func TestEstimateDemand_PersisteLaPrediccion(t *testing.T) {
	uc, store := newEstimator(t, 10)
	seedMonthlyOut(t, store, []int{10, 20, 30, 40})

	out, err := uc.EstimateDemand(context.Background(), testProductID, 4)
	require.NoError(t, err)

	persisted := productPredictions(t, store)
	assert.Equal(t, out.Predictions.NextPeriodDemand, persisted.NextPeriodDemand)
	assert.Equal(t, out.Predictions.SuggestedReorderQty, persisted.SuggestedReorderQty)
	assert.Equal(t, out.Predictions.Confidence, persisted.Confidence)
}

func TestEstimateDemand_ProductoInexistente(t *testing.T) {
	uc, _ := newEstimator(t, 10)
	_, err := uc.EstimateDemand(context.Background(), "no-existe", 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
