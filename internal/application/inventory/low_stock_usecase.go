package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/application/dto"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// LowStockUseCase genera la lista de reposición: productos por debajo de su
// punto de reorden con la cantidad sugerida de pedido, valorada al último
// costo conocido.
type LowStockUseCase struct {
	productRepo repository.ProductRepository
	costUC      *CostUseCase
}

// NewLowStockUseCase construye el caso de uso de reposición.
func NewLowStockUseCase(productRepo repository.ProductRepository, costUC *CostUseCase) *LowStockUseCase {
	return &LowStockUseCase{productRepo: productRepo, costUC: costUC}
}

// GenerateLowStockList devuelve los productos bajo punto de reorden con la
// cantidad sugerida para volver al stock ideal (2x el punto de reorden),
// ordenados por mayor déficit primero.
func (uc *LowStockUseCase) GenerateLowStockList(ctx context.Context, limit int) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.ListBelowMinStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []dto.LowStockItemDTO{}, nil
	}

	items := make([]dto.LowStockItemDTO, 0, len(products))
	for _, p := range products {
		idealStock := p.MinStock * 2
		suggestedQty := idealStock - p.Stock
		if suggestedQty < 0 {
			suggestedQty = 0
		}
		unitCost, err := uc.costUC.LastCost(ctx, p.ID)
		if err != nil {
			unitCost = p.Cost
		}
		items = append(items, dto.LowStockItemDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			CurrentStock:       p.Stock,
			MinStock:           p.MinStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           unitCost,
			EstimatedOrderCost: decimal.NewFromInt(suggestedQty).Mul(unitCost),
		})
	}
	// Mayor déficit primero
	sort.Slice(items, func(i, j int) bool {
		di := items[i].MinStock - items[i].CurrentStock
		dj := items[j].MinStock - items[j].CurrentStock
		return di > dj
	})
	return items, nil
}
