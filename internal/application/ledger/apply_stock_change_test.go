package ledger_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testProductID = "00000000-0000-0000-0000-000000000001"

// newMutator arma el mutador sobre el almacén en memoria con un producto ya
// creado con el stock indicado.
func newMutator(t *testing.T, initialStock int) (*ledger.ApplyStockChangeUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	err := productRepo.Create(context.Background(), &entity.Product{
		ID:           testProductID,
		SKU:          "SKU-001",
		Name:         "Producto de prueba",
		CurrentStock: initialStock,
		Thresholds: entity.Thresholds{
			Min:           entity.DefaultThresholdMin,
			Max:           entity.DefaultThresholdMax,
			ReorderPoint:  entity.DefaultReorderPoint,
			CriticalLevel: entity.DefaultCriticalLevel,
		},
		Price:    entity.Price{Cost: decimal.NewFromInt(10), Selling: decimal.NewFromInt(15), Currency: "USD"},
		IsActive: true,
	})
	require.NoError(t, err, "el producto de prueba debe crearse")

	log := logger.New(logger.Config{Env: "production", Level: "error"})
	uc := ledger.NewApplyStockChangeUseCase(memory.NewTxRunner(store), nil, log)
	return uc, store
}

func currentStock(t *testing.T, store *memory.Store) int {
	t.Helper()
	p, err := memory.NewProductRepository(store).GetByID(context.Background(), testProductID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func allRecords(t *testing.T, store *memory.Store) []*entity.LedgerRecord {
	t.Helper()
	records, err := memory.NewLedgerRepository(store).ListByDateRange(context.Background(), nil, nil)
	require.NoError(t, err)
	return records
}

func change(typ string, qty int) ledger.ApplyStockChangeInput {
	return ledger.ApplyStockChangeInput{
		ProductID: testProductID,
		Type:      typ,
		Quantity:  qty,
		Reason:    "Movimiento de prueba",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Semántica por tipo de movimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_EntradaSumaStock(t *testing.T) {
	uc, store := newMutator(t, 5)

	result, err := uc.Execute(context.Background(), change(entity.LedgerTypeIN, 10))
	require.NoError(t, err)

	assert.Equal(t, 15, result.Product.CurrentStock)
	assert.Equal(t, 5, result.Record.PreviousStock)
	assert.Equal(t, 15, result.Record.NewStock)
	assert.Equal(t, 10, result.Record.Quantity)
	assert.Equal(t, 15, currentStock(t, store), "el stock persistido debe coincidir con el resultado")
}

func TestExecute_SalidaRestaStock(t *testing.T) {
	uc, store := newMutator(t, 20)

	result, err := uc.Execute(context.Background(), change(entity.LedgerTypeOUT, 8))
	require.NoError(t, err)

	assert.Equal(t, 12, result.Product.CurrentStock)
	assert.Equal(t, 12, currentStock(t, store))
}

func TestExecute_SalidaMayorAlStockFalla(t *testing.T) {
	uc, store := newMutator(t, 5)

	_, err := uc.Execute(context.Background(), change(entity.LedgerTypeOUT, 6))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El rechazo no deja rastro: ni stock movido ni registro agregado.
	assert.Equal(t, 5, currentStock(t, store), "el stock no debe cambiar ante un rechazo")
	assert.Empty(t, allRecords(t, store), "no debe quedar ningún registro en el ledger")
}

func TestExecute_DevolucionSumaYMermaResta(t *testing.T) {
	uc, store := newMutator(t, 10)

	_, err := uc.Execute(context.Background(), change(entity.LedgerTypeRETURN, 3))
	require.NoError(t, err)
	assert.Equal(t, 13, currentStock(t, store))

	_, err = uc.Execute(context.Background(), change(entity.LedgerTypeDAMAGE, 4))
	require.NoError(t, err)
	assert.Equal(t, 9, currentStock(t, store))
}

func TestExecute_TipoDesconocidoFalla(t *testing.T) {
	uc, _ := newMutator(t, 10)
	_, err := uc.Execute(context.Background(), change("TRANSFER", 5))
	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)
}

func TestExecute_CantidadCeroFalla(t *testing.T) {
	uc, _ := newMutator(t, 10)
	_, err := uc.Execute(context.Background(), change(entity.LedgerTypeIN, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestExecute_ProductoInexistenteFalla(t *testing.T) {
	uc, _ := newMutator(t, 10)
	in := change(entity.LedgerTypeIN, 5)
	in.ProductID = "no-existe"
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ADJUSTMENT: fija el stock a un valor absoluto
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_AjusteFijaValorAbsoluto(t *testing.T) {
	uc, store := newMutator(t, 10)

	result, err := uc.Execute(context.Background(), change(entity.LedgerTypeADJUSTMENT, 4))
	require.NoError(t, err)

	assert.Equal(t, 4, currentStock(t, store), "ADJUSTMENT fija el stock, no aplica delta")
	assert.Equal(t, entity.LedgerTypeADJUSTMENT, result.Record.Type)
	assert.Equal(t, 6, result.Record.Quantity, "la cantidad registrada es |nuevo - anterior|")
	assert.Equal(t, 10, result.Record.PreviousStock)
	assert.Equal(t, 4, result.Record.NewStock)
	assert.True(t, result.Record.IsOutbound(), "la dirección se recupera del snapshot")
}

func TestExecute_AjusteHaciaArriba(t *testing.T) {
	uc, store := newMutator(t, 10)

	result, err := uc.Execute(context.Background(), change(entity.LedgerTypeADJUSTMENT, 25))
	require.NoError(t, err)

	assert.Equal(t, 25, currentStock(t, store))
	assert.Equal(t, 15, result.Record.Quantity)
	assert.False(t, result.Record.IsOutbound())
}

func TestExecute_AjusteSinCambioFalla(t *testing.T) {
	uc, store := newMutator(t, 10)

	_, err := uc.Execute(context.Background(), change(entity.LedgerTypeADJUSTMENT, 10))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity, "un ajuste al mismo valor no genera movimiento")
	assert.Empty(t, allRecords(t, store))
}

func TestExecute_AjusteNegativoFalla(t *testing.T) {
	uc, _ := newMutator(t, 10)
	_, err := uc.Execute(context.Background(), change(entity.LedgerTypeADJUSTMENT, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Efectos sobre métricas y costos
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_SoloOutEInActualizanAcumulados(t *testing.T) {
	uc, store := newMutator(t, 50)
	ctx := context.Background()

	_, err := uc.Execute(ctx, change(entity.LedgerTypeOUT, 5))
	require.NoError(t, err)
	_, err = uc.Execute(ctx, change(entity.LedgerTypeIN, 10))
	require.NoError(t, err)
	_, err = uc.Execute(ctx, change(entity.LedgerTypeRETURN, 2))
	require.NoError(t, err)
	_, err = uc.Execute(ctx, change(entity.LedgerTypeDAMAGE, 3))
	require.NoError(t, err)

	p, err := memory.NewProductRepository(store).GetByID(ctx, testProductID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Metrics.TotalSold, "solo OUT acumula ventas")
	assert.Equal(t, 10, p.Metrics.TotalOrdered, "solo IN acumula compras")
	assert.NotNil(t, p.Metrics.LastSold)
	assert.NotNil(t, p.Metrics.LastRestocked)
}

func TestExecute_RegistroLlevaCostoDelMomento(t *testing.T) {
	uc, _ := newMutator(t, 10)

	result, err := uc.Execute(context.Background(), change(entity.LedgerTypeOUT, 3))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(result.Record.UnitCost))
	assert.True(t, decimal.NewFromInt(30).Equal(result.Record.TotalCost))
}

func TestExecute_PerformedByPorDefecto(t *testing.T) {
	uc, _ := newMutator(t, 10)

	result, err := uc.Execute(context.Background(), change(entity.LedgerTypeIN, 1))
	require.NoError(t, err)
	assert.Equal(t, "System", result.Record.PerformedBy)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante del ledger: la suma de deltas firmados reproduce el stock
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_SumaDeDeltasReproduceElStock(t *testing.T) {
	uc, store := newMutator(t, 0)
	ctx := context.Background()

	sequence := []ledger.ApplyStockChangeInput{
		change(entity.LedgerTypeIN, 30),
		change(entity.LedgerTypeOUT, 12),
		change(entity.LedgerTypeADJUSTMENT, 40),
		change(entity.LedgerTypeRETURN, 5),
		change(entity.LedgerTypeDAMAGE, 7),
		change(entity.LedgerTypeOUT, 6),
	}
	for _, in := range sequence {
		_, err := uc.Execute(ctx, in)
		require.NoError(t, err)
	}

	sum := 0
	for _, r := range allRecords(t, store) {
		sum += r.SignedDelta()
	}
	assert.Equal(t, currentStock(t, store), sum,
		"la suma de deltas firmados del ledger debe ser el stock actual")
	assert.Equal(t, 32, sum)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos acotados ante conflictos de serialización
// ──────────────────────────────────────────────────────────────────────────────

// conflictingTxRunner devuelve domain.ErrConflict en las primeras failures
// llamadas a Run y después delega en el runner real, simulando los fallos
// transitorios de serialización que el adaptador de PostgreSQL traduce.
type conflictingTxRunner struct {
	inner    ledger.TxRunner
	failures int
	calls    int
}

func (r *conflictingTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	r.calls++
	if r.calls <= r.failures {
		return fmt.Errorf("%w: could not serialize access", domain.ErrConflict)
	}
	return r.inner.Run(ctx, fn)
}

func newConflictingMutator(t *testing.T, initialStock, failures int) (*ledger.ApplyStockChangeUseCase, *conflictingTxRunner, *memory.Store) {
	t.Helper()
	_, store := newMutator(t, initialStock)
	runner := &conflictingTxRunner{inner: memory.NewTxRunner(store), failures: failures}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return ledger.NewApplyStockChangeUseCase(runner, nil, log), runner, store
}

func TestExecute_ConflictoTransitorioSeReintentaConExito(t *testing.T) {
	uc, runner, store := newConflictingMutator(t, 10, 2)

	result, err := uc.Execute(context.Background(), change(entity.LedgerTypeIN, 5))
	require.NoError(t, err, "dos conflictos transitorios caben en el presupuesto de reintentos")

	assert.Equal(t, 3, runner.calls, "el movimiento debe aplicarse en el tercer intento")
	assert.Equal(t, 15, result.Product.CurrentStock)
	assert.Equal(t, 15, currentStock(t, store))
	assert.Len(t, allRecords(t, store), 1, "los intentos fallidos no dejan registros")
}

func TestExecute_ConflictoPersistenteAgotaReintentos(t *testing.T) {
	uc, runner, store := newConflictingMutator(t, 10, 99)

	_, err := uc.Execute(context.Background(), change(entity.LedgerTypeIN, 5))
	require.ErrorIs(t, err, domain.ErrConflictRetryExceeded)

	assert.Equal(t, 3, runner.calls, "el presupuesto de reintentos es de tres intentos")
	assert.Equal(t, 10, currentStock(t, store), "el stock no debe cambiar si todos los intentos fallan")
	assert.Empty(t, allRecords(t, store))
}

func TestExecute_ErrorNoConflictivoNoSeReintenta(t *testing.T) {
	uc, runner, _ := newConflictingMutator(t, 5, 0)

	_, err := uc.Execute(context.Background(), change(entity.LedgerTypeOUT, 6))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, runner.calls, "solo los conflictos de serialización se reintentan")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: mutaciones en paralelo no pierden actualizaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_ConcurrenciaSinPerdidas(t *testing.T) {
	uc, store := newMutator(t, 0)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := uc.Execute(ctx, change(entity.LedgerTypeIN, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, writers, currentStock(t, store),
		"cada entrada concurrente debe quedar aplicada exactamente una vez")
	assert.Len(t, allRecords(t, store), writers)
}
