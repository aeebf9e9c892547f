// Package memory provee adaptadores de persistencia en memoria para tests y
// modo desarrollo. La escritura transaccional se serializa con un mutex por
// producto, cumpliendo la disciplina de un solo escritor por entidad.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/application/ledger"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Store estado compartido de los adaptadores en memoria.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	records    []*entity.LedgerRecord

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex // por productID
}

// NewStore construye el almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		locks:      make(map[string]*sync.Mutex),
	}
}

// productLock devuelve el mutex del producto, creándolo la primera vez.
func (s *Store) productLock(productID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[productID] = l
	}
	return l
}

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta el callback con los repos del almacén. No hay rollback
// real: los fallos en memoria son nulos, y la serialización por producto la
// da GetForUpdate (que retiene el lock del producto hasta el fin del callback).
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repositorios atados al almacén.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	productRepo := NewProductRepository(r.store)
	ledgerRepo := NewLedgerRepository(r.store)
	defer productRepo.releaseLocks()
	return fn(productRepo, ledgerRepo)
}
