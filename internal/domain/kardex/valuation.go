package kardex

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/kardex-core/internal/domain/entity"
)

// TotalCost calcula el impacto de costo de un conjunto de líneas:
// Σ(cantidad * costo unitario). Servicio de dominio puro.
func TotalCost(lines []*entity.MovementDetail) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromInt(l.Quantity).Mul(l.UnitCost))
	}
	return total
}

// Variance devuelve la diferencia entre conteo físico y stock del sistema.
// Positivo = sobrante (entra), negativo = faltante (sale).
func Variance(physical, system int64) int64 {
	return physical - system
}
