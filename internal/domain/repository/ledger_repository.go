package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del ledger de stock.
// Es append-only por contrato: no expone update ni delete.
type LedgerRepository interface {
	Append(ctx context.Context, record *entity.LedgerRecord) error
	GetByID(ctx context.Context, id string) (*entity.LedgerRecord, error)
	// ListByProduct lista registros de un producto, más recientes primero.
	// typeFilter vacío = todos los tipos; from/to nil = sin límite de fecha.
	ListByProduct(ctx context.Context, productID, typeFilter string, from, to *time.Time, limit, offset int) ([]*entity.LedgerRecord, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
	// ListByDateRange lista todos los registros del período, más antiguos primero.
	ListByDateRange(ctx context.Context, from, to *time.Time) ([]*entity.LedgerRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.LedgerRecord, error)
	// SumQuantity suma las cantidades de un tipo de movimiento en el período.
	SumQuantity(ctx context.Context, productID, typ string, from, to time.Time) (int, error)
}
