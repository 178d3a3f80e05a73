package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	store  *Store
	locked bool // true cuando el repo opera dentro de una tx que ya tiene el lock
}

// NewProductRepository construye el repositorio sobre el store.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

// Create persiste un producto nuevo con stock 0.
func (r *ProductRepo) Create(product *entity.Product) error {
	defer r.lock()()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for _, p := range r.store.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *product
	cp.Stock = 0
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.store.products[cp.ID] = &cp
	return nil
}

// GetByID obtiene una copia del producto, o nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// GetBySKU obtiene una copia del producto por SKU, o nil si no existe.
func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	defer r.lock()()
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// Update actualiza datos de catálogo. SKU y stock no se tocan.
func (r *ProductRepo) Update(product *entity.Product) error {
	defer r.lock()()
	current, ok := r.store.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	current.Name = product.Name
	current.Cost = product.Cost
	current.Price = product.Price
	current.MinStock = product.MinStock
	current.UpdatedAt = time.Now()
	return nil
}

// UpdatePrice sobreescribe el precio de venta.
func (r *ProductRepo) UpdatePrice(productID string, price decimal.Decimal) error {
	defer r.lock()()
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// List lista productos ordenados por nombre.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	defer r.lock()()
	list := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

// ListBelowMinStock devuelve productos con stock bajo punto de reorden,
// mayor déficit primero.
func (r *ProductRepo) ListBelowMinStock(ctx context.Context, limit int) ([]*entity.Product, error) {
	defer r.lock()()
	var list []*entity.Product
	for _, p := range r.store.products {
		if p.Stock < p.MinStock {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return (list[i].MinStock - list[i].Stock) > (list[j].MinStock - list[j].Stock)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
