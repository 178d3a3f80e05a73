package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/domain"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// CostUseCase resuelve el costo base de un producto: el costo unitario más
// reciente visto en el historial de movimientos, con fallback al costo de
// catálogo. Consulta pura, sin estado propio; evita que el costo se degrade
// por re-digitación al precargar movimientos y ajustes de auditoría.
type CostUseCase struct {
	movRepo     repository.MovementRepository
	productRepo repository.ProductRepository
	cache       CostCache // puede ser nil
}

// NewCostUseCase construye el caso de uso. cache es opcional (nil = sin caché).
func NewCostUseCase(
	movRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	cache CostCache,
) *CostUseCase {
	return &CostUseCase{movRepo: movRepo, productRepo: productRepo, cache: cache}
}

// LastCost devuelve el costo unitario de la línea con fecha de movimiento más
// reciente para el producto, o el costo de catálogo si no hay historial.
func (uc *CostUseCase) LastCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	if uc.cache != nil {
		if cost, ok := uc.cache.GetLastCost(ctx, productID); ok {
			return cost, nil
		}
	}
	detail, err := uc.movRepo.LastDetailByProduct(productID)
	if err != nil {
		return decimal.Zero, err
	}
	var cost decimal.Decimal
	if detail != nil {
		cost = detail.UnitCost
	} else {
		product, err := uc.productRepo.GetByID(productID)
		if err != nil {
			return decimal.Zero, err
		}
		if product == nil {
			return decimal.Zero, domain.ErrNotFound
		}
		cost = product.Cost
	}
	if uc.cache != nil {
		uc.cache.SetLastCost(ctx, productID, cost)
	}
	return cost, nil
}
