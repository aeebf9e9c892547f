package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la actualización del producto
// y el append al ledger se apliquen ambos o ninguno.
//
// Las implementaciones traducen los fallos transitorios de serialización a
// domain.ErrConflict para que el caso de uso pueda reintentar.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// MetricsRefresher refresca las métricas de un producto tras una mutación.
// El refresco es best-effort: una mutación exitosa nunca se revierte porque
// el recálculo de métricas falle (se loguea y se reintenta después).
type MetricsRefresher interface {
	RefreshProduct(ctx context.Context, productID string) error
}
