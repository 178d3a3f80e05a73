package memory

import (
	"time"

	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo proyección de stock en memoria. El lock global del store hace las
// veces del bloqueo de fila.
type StockRepo struct {
	store  *Store
	locked bool
}

// NewStockRepository construye el adaptador de stock sobre el store.
func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// GetForUpdate obtiene una copia del producto, o nil si no existe.
func (r *StockRepo) GetForUpdate(productID string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.store.products[productID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ApplyDelta suma delta al stock con guarda de negativos.
func (r *StockRepo) ApplyDelta(productID string, delta int64) error {
	defer r.lock()()
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now()
	return nil
}
