package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo adaptador en memoria de ProductRepository. Devuelve copias:
// el estado del almacén solo cambia vía Create/Update/Deactivate.
type ProductRepo struct {
	store *Store

	heldMu sync.Mutex
	held   []*sync.Mutex // locks de producto tomados por GetForUpdate
}

// NewProductRepository construye el adaptador.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

// Create persiste un nuevo producto. SKU duplicado devuelve ErrDuplicate.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.store.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	clone := *p
	r.store.products[p.ID] = &clone
	return nil
}

// GetByID obtiene una copia del producto, o nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

// GetBySKU obtiene una copia del producto por SKU.
func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, p := range r.store.products {
		if p.SKU == sku {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

// GetForUpdate toma el lock del producto (un solo escritor por producto) y
// lo retiene hasta el fin del callback del TxRunner. Usar solo dentro del
// TxRunner.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	lock := r.store.productLock(id)
	lock.Lock()
	r.heldMu.Lock()
	r.held = append(r.held, lock)
	r.heldMu.Unlock()
	return r.GetByID(ctx, id)
}

// releaseLocks libera los locks tomados por GetForUpdate (fin de la tx).
func (r *ProductRepo) releaseLocks() {
	r.heldMu.Lock()
	defer r.heldMu.Unlock()
	for _, l := range r.held {
		l.Unlock()
	}
	r.held = nil
}

// Update persiste el producto e incrementa la versión.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *p
	clone.Version++
	r.store.products[p.ID] = &clone
	p.Version = clone.Version
	return nil
}

// UpdateMetrics persiste métricas y velocidad.
func (r *ProductRepo) UpdateMetrics(_ context.Context, productID string, m entity.ProductMetrics, velocity string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Metrics = m
	p.Velocity = velocity
	p.Version++
	return nil
}

// UpdatePredictions persiste la proyección de demanda.
func (r *ProductRepo) UpdatePredictions(_ context.Context, productID string, pred entity.Predictions) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Predictions = pred
	p.Version++
	return nil
}

// List lista productos más recientes primero. limit <= 0 devuelve todos.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	all := r.snapshot(nil)
	if limit <= 0 {
		return all, nil
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// ListActive lista los productos activos.
func (r *ProductRepo) ListActive(_ context.Context) ([]*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.snapshot(func(p *entity.Product) bool { return p.IsActive }), nil
}

// ListByCategory lista los productos de una categoría.
func (r *ProductRepo) ListByCategory(_ context.Context, categoryID string, activeOnly bool) ([]*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.snapshot(func(p *entity.Product) bool {
		if p.CategoryID != categoryID {
			return false
		}
		return !activeOnly || p.IsActive
	}), nil
}

// CountByCategory cuenta los productos de una categoría.
func (r *ProductRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, p := range r.store.products {
		if p.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// Count cuenta todos los productos.
func (r *ProductRepo) Count(_ context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.products), nil
}

// Deactivate baja lógica del producto.
func (r *ProductRepo) Deactivate(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = false
	p.Version++
	return nil
}

// snapshot copia filtrada, ordenada por fecha de creación descendente.
// El caller debe tener tomado store.mu.
func (r *ProductRepo) snapshot(keep func(*entity.Product) bool) []*entity.Product {
	result := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if keep != nil && !keep(p) {
			continue
		}
		clone := *p
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
