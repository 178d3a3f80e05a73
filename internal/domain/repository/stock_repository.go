package repository

import "github.com/tu-usuario/kardex-core/internal/domain/entity"

// StockRepository es la proyección materializada de stock por producto.
// Es la única vía para mutar Product.Stock y se usa siempre dentro de una
// transacción del ledger para garantizar consistencia.
type StockRepository interface {
	// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(productID string) (*entity.Product, error)

	// ApplyDelta suma delta (positivo o negativo) al stock del producto.
	// Devuelve domain.ErrInsufficientStock si el resultado quedaría negativo;
	// en ese caso no escribe nada.
	ApplyDelta(productID string, delta int64) error
}
