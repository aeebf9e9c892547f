package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo adaptador en memoria del ledger. Append-only sobre un slice
// compartido del Store.
type LedgerRepo struct {
	store *Store
}

// NewLedgerRepository construye el adaptador.
func NewLedgerRepository(store *Store) *LedgerRepo {
	return &LedgerRepo{store: store}
}

// Append agrega un registro al ledger.
func (r *LedgerRepo) Append(_ context.Context, record *entity.LedgerRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *record
	r.store.records = append(r.store.records, &clone)
	return nil
}

// GetByID obtiene una copia del registro, o nil si no existe.
func (r *LedgerRepo) GetByID(_ context.Context, id string) (*entity.LedgerRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, rec := range r.store.records {
		if rec.ID == id {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil
}

// ListByProduct lista registros de un producto, más recientes primero.
func (r *LedgerRepo) ListByProduct(_ context.Context, productID, typeFilter string, from, to *time.Time, limit, offset int) ([]*entity.LedgerRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	matched := r.filter(func(rec *entity.LedgerRecord) bool {
		if rec.ProductID != productID {
			return false
		}
		if typeFilter != "" && rec.Type != typeFilter {
			return false
		}
		return inRange(rec.CreatedAt, from, to)
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// CountByProduct cuenta los registros de un producto.
func (r *LedgerRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, rec := range r.store.records {
		if rec.ProductID == productID {
			count++
		}
	}
	return count, nil
}

// ListByDateRange lista todos los registros del período, más antiguos primero.
func (r *LedgerRepo) ListByDateRange(_ context.Context, from, to *time.Time) ([]*entity.LedgerRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	matched := r.filter(func(rec *entity.LedgerRecord) bool {
		return inRange(rec.CreatedAt, from, to)
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

// ListRecent lista los últimos movimientos de todos los productos.
func (r *LedgerRepo) ListRecent(_ context.Context, limit int) ([]*entity.LedgerRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	matched := r.filter(nil)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// SumQuantity suma las cantidades de un tipo de movimiento en el período.
func (r *LedgerRepo) SumQuantity(_ context.Context, productID, typ string, from, to time.Time) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sum := 0
	for _, rec := range r.store.records {
		if rec.ProductID != productID || rec.Type != typ {
			continue
		}
		if rec.CreatedAt.Before(from) || rec.CreatedAt.After(to) {
			continue
		}
		sum += rec.Quantity
	}
	return sum, nil
}

// filter copia filtrada de los registros. El caller debe tener store.mu.
func (r *LedgerRepo) filter(keep func(*entity.LedgerRecord) bool) []*entity.LedgerRecord {
	result := make([]*entity.LedgerRecord, 0, len(r.store.records))
	for _, rec := range r.store.records {
		if keep != nil && !keep(rec) {
			continue
		}
		clone := *rec
		result = append(result, &clone)
	}
	return result
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
