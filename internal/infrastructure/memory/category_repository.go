package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo adaptador en memoria de CategoryRepository.
type CategoryRepo struct {
	store *Store
}

// NewCategoryRepository construye el adaptador.
func NewCategoryRepository(store *Store) *CategoryRepo {
	return &CategoryRepo{store: store}
}

// Create persiste una categoría. Nombre duplicado devuelve ErrDuplicate.
func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.categories[category.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.store.categories {
		if strings.EqualFold(existing.Name, category.Name) {
			return domain.ErrDuplicate
		}
	}
	clone := *category
	r.store.categories[category.ID] = &clone
	return nil
}

// GetByID obtiene una copia de la categoría, o nil si no existe.
func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.categories[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

// GetByName busca por nombre exacto (case-insensitive).
func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.categories {
		if strings.EqualFold(c.Name, name) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

// List lista categorías ordenadas por nombre.
func (r *CategoryRepo) List(_ context.Context, activeOnly bool) ([]*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make([]*entity.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		if activeOnly && !c.IsActive {
			continue
		}
		clone := *c
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Update persiste la categoría.
func (r *CategoryRepo) Update(_ context.Context, category *entity.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.categories[category.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *category
	r.store.categories[category.ID] = &clone
	return nil
}

// UpdateMetrics persiste el rollup recomputado.
func (r *CategoryRepo) UpdateMetrics(_ context.Context, categoryID string, metrics entity.CategoryMetrics) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.categories[categoryID]
	if !ok {
		return domain.ErrNotFound
	}
	c.Metrics = metrics
	return nil
}

// Delete elimina la categoría.
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.categories, id)
	return nil
}
