package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// CurrentStock y Metrics solo se actualizan dentro de la transacción del
// mutador de stock; el resto de campos vía Update.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Usar solo
	// dentro de una transacción del TxRunner.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateMetrics persiste métricas y velocidad sin tocar el resto del producto.
	UpdateMetrics(ctx context.Context, productID string, metrics entity.ProductMetrics, velocity string) error
	// UpdatePredictions persiste la proyección de demanda (write-back del estimador).
	UpdatePredictions(ctx context.Context, productID string, predictions entity.Predictions) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListActive(ctx context.Context) ([]*entity.Product, error)
	ListByCategory(ctx context.Context, categoryID string, activeOnly bool) ([]*entity.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	Count(ctx context.Context) (int, error)
	// Deactivate baja lógica: el histórico del ledger debe seguir siendo válido,
	// nunca se borra físicamente.
	Deactivate(ctx context.Context, id string) error
}
