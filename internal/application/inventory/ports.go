package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el ledger: o se
// aplican todas las líneas y deltas de stock, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// CostCache cachea el último costo conocido por producto para lecturas no
// bloqueantes (tolerancia a consistencia eventual). Las escrituras del ledger
// lo invalidan.
type CostCache interface {
	GetLastCost(ctx context.Context, productID string) (decimal.Decimal, bool)
	SetLastCost(ctx context.Context, productID string, cost decimal.Decimal)
	Invalidate(ctx context.Context, productID string)
}
