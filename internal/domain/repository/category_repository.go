package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	// UpdateMetrics persiste el rollup recomputado sin tocar el resto de campos.
	UpdateMetrics(ctx context.Context, categoryID string, metrics entity.CategoryMetrics) error
	Delete(ctx context.Context, id string) error
}
