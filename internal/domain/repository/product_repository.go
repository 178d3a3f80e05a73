package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El stock no se toca por aquí: eso es exclusivo de StockRepository dentro
// de una transacción del ledger.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	UpdatePrice(productID string, price decimal.Decimal) error
	List(limit, offset int) ([]*entity.Product, error)

	// ListBelowMinStock devuelve los productos cuyo stock actual es inferior
	// a su punto de reorden, ordenados por mayor déficit primero.
	ListBelowMinStock(ctx context.Context, limit int) ([]*entity.Product, error)
}
