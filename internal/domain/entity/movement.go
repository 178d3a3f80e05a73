package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// Conceptos de movimiento (campo de primera clase; Reason queda como texto libre).
const (
	ConceptCompra          = "COMPRA"
	ConceptVenta           = "VENTA"
	ConceptDevolucion      = "DEVOLUCION"
	ConceptMerma           = "MERMA"
	ConceptAuditoria       = "AUDITORIA"
	ConceptAuditoriaRapida = "AUDITORIA_RAPIDA"
	ConceptOtro            = "OTRO"
)

// MovementHeader representa la cabecera de un movimiento de inventario.
// Un movimiento agrupa una o más líneas (MovementDetail) del mismo tipo.
// AuditSessionID referencia la sesión de auditoría que lo originó (si aplica);
// es una back-reference, no propiedad: la sesión no posee el movimiento.
type MovementHeader struct {
	ID             string
	Type           string // IN u OUT
	Concept        string
	Reason         string // narrativa libre, se almacena tal cual
	Date           time.Time
	TotalCost      decimal.Decimal // Σ(cantidad * costo unitario) de sus líneas
	AuditSessionID *string
	CreatedAt      time.Time
	CreatedBy      string // UserID del actor
}

// MovementDetail representa una línea de movimiento. Pertenece exactamente a
// una cabecera. Quantity siempre positivo; el signo lo da el tipo de la cabecera.
type MovementDetail struct {
	ID         string
	MovementID string
	ProductID  string
	Quantity   int64           // > 0
	UnitCost   decimal.Decimal // >= 0
	NewPrice   *decimal.Decimal // solo IN: sobreescribe el precio de venta
}

// SignedQuantity devuelve la cantidad con el signo del tipo de cabecera
// (+ entradas, - salidas).
func (d MovementDetail) SignedQuantity(headerType string) int64 {
	if headerType == MovementTypeOUT {
		return -d.Quantity
	}
	return d.Quantity
}
