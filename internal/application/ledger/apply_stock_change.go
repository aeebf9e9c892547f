package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// maxRetries presupuesto de reintentos ante conflictos de serialización.
const maxRetries = 3

// defaultPerformedBy autor por defecto de un movimiento.
const defaultPerformedBy = "System"

// ApplyStockChangeUseCase es el mutador de stock: aplica un delta al producto
// y agrega el registro correspondiente al ledger en una sola transacción,
// con bloqueo de fila (SELECT FOR UPDATE) para serializar los escritores
// por producto.
//
// Semántica de ADJUSTMENT: fija el stock a un valor absoluto y registra el
// tipo literal ADJUSTMENT con Quantity = |nuevo - anterior|; la dirección se
// recupera del snapshot PreviousStock/NewStock. Es la única semántica en todo
// el sistema (endpoint de stock y camino genérico por igual).
type ApplyStockChangeUseCase struct {
	txRunner  TxRunner
	refresher MetricsRefresher
	log       *logger.Logger
}

// NewApplyStockChangeUseCase construye el mutador. refresher puede ser nil
// (sin refresco de métricas tras la mutación).
func NewApplyStockChangeUseCase(txRunner TxRunner, refresher MetricsRefresher, log *logger.Logger) *ApplyStockChangeUseCase {
	return &ApplyStockChangeUseCase{txRunner: txRunner, refresher: refresher, log: log}
}

// ApplyStockChangeInput entrada validada del mutador.
// Para ADJUSTMENT, Quantity es el stock objetivo (>= 0); para el resto de
// tipos es el delta (> 0).
type ApplyStockChangeInput struct {
	ProductID   string
	Type        string
	Quantity    int
	Reason      string
	Reference   string
	PerformedBy string
}

// StockChangeResult producto actualizado + registro agregado.
type StockChangeResult struct {
	Product *entity.Product
	Record  *entity.LedgerRecord
}

// Execute valida la entrada y aplica el cambio de stock con un presupuesto
// acotado de reintentos ante conflictos de serialización. Tras el commit
// dispara el refresco de métricas best-effort.
func (uc *ApplyStockChangeUseCase) Execute(ctx context.Context, input ApplyStockChangeInput) (*StockChangeResult, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	var result *StockChangeResult
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err = uc.runOnce(ctx, input)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		uc.log.Warn().
			Str("product_id", input.ProductID).
			Int("attempt", attempt+1).
			Msg("conflicto de serialización, reintentando movimiento")
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflictRetryExceeded
		}
		return nil, err
	}

	// Refresco de métricas tras la mutación: nunca revierte la mutación.
	if uc.refresher != nil {
		if rerr := uc.refresher.RefreshProduct(ctx, input.ProductID); rerr != nil {
			uc.log.Warn().Err(rerr).
				Str("product_id", input.ProductID).
				Msg("refresco de métricas falló tras la mutación; se reintentará")
		}
	}
	return result, nil
}

// runOnce un intento transaccional completo.
func (uc *ApplyStockChangeUseCase) runOnce(ctx context.Context, input ApplyStockChangeInput) (*StockChangeResult, error) {
	var result *StockChangeResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		r, err := ApplyInTx(ctx, productRepo, ledgerRepo, product, input, time.Now())
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyInTx aplica el cambio sobre un producto ya bloqueado, usando los
// repositorios de la transacción del caller. Lo usa Execute y también la
// creación de productos (registro sintético "Initial stock" en la misma tx).
func ApplyInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
	product *entity.Product,
	input ApplyStockChangeInput,
	now time.Time,
) (*StockChangeResult, error) {
	previous := product.CurrentStock

	var newStock, recordQty int
	switch input.Type {
	case entity.LedgerTypeIN, entity.LedgerTypeRETURN:
		newStock = previous + input.Quantity
		recordQty = input.Quantity
	case entity.LedgerTypeOUT, entity.LedgerTypeDAMAGE:
		if previous < input.Quantity {
			return nil, domain.ErrInsufficientStock
		}
		newStock = previous - input.Quantity
		recordQty = input.Quantity
	case entity.LedgerTypeADJUSTMENT:
		newStock = input.Quantity
		if newStock == previous {
			// Nada que registrar: el ledger no admite movimientos de delta cero.
			return nil, domain.ErrInvalidQuantity
		}
		recordQty = newStock - previous
		if recordQty < 0 {
			recordQty = -recordQty
		}
	default:
		return nil, domain.ErrInvalidTransactionType
	}

	// Efectos sobre métricas: solo OUT e IN actualizan los acumulados de
	// venta/compra; RETURN, DAMAGE y ADJUSTMENT mueven únicamente el stock.
	switch input.Type {
	case entity.LedgerTypeOUT:
		product.Metrics.TotalSold += recordQty
		product.Metrics.LastSold = &now
	case entity.LedgerTypeIN:
		product.Metrics.TotalOrdered += recordQty
		product.Metrics.LastRestocked = &now
	}

	product.CurrentStock = newStock
	product.UpdatedAt = now
	if err := productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	performedBy := input.PerformedBy
	if performedBy == "" {
		performedBy = defaultPerformedBy
	}
	unitCost := product.Price.Cost
	record := &entity.LedgerRecord{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		Type:          input.Type,
		Quantity:      recordQty,
		PreviousStock: previous,
		NewStock:      newStock,
		Reason:        input.Reason,
		Reference:     input.Reference,
		PerformedBy:   performedBy,
		UnitCost:      unitCost,
		TotalCost:     unitCost.Mul(decimal.NewFromInt(int64(recordQty))),
		CreatedAt:     now,
	}
	if err := ledgerRepo.Append(ctx, record); err != nil {
		return nil, err
	}

	return &StockChangeResult{Product: product, Record: record}, nil
}

// validate reglas de entrada: tipo conocido y cantidad coherente con el tipo.
func validate(input ApplyStockChangeInput) error {
	if input.ProductID == "" || input.Reason == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidLedgerType(input.Type) {
		return domain.ErrInvalidTransactionType
	}
	if input.Type == entity.LedgerTypeADJUSTMENT {
		if input.Quantity < 0 {
			return domain.ErrInvalidQuantity
		}
		return nil
	}
	if input.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}
