package memory

import (
	"context"

	"github.com/tu-usuario/kardex-core/internal/application/inventory"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner equivalente en memoria del runner transaccional: toma el lock
// global del store, ejecuta fn con repos atados al estado bloqueado y, si fn
// falla, restaura el snapshot previo. Las operaciones del ledger quedan
// serializadas entre sí, igual que con bloqueo de fila en PostgreSQL.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn de forma atómica contra el store.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snap := r.store.takeSnapshot()

	movRepo := &MovementRepo{store: r.store, locked: true}
	stockRepo := &StockRepo{store: r.store, locked: true}
	productRepo := &ProductRepo{store: r.store, locked: true}

	if err := fn(movRepo, stockRepo, productRepo); err != nil {
		r.store.restore(snap)
		return err
	}
	return nil
}
