package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLineRequest una línea de movimiento en el body.
type MovementLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitCost  decimal.Decimal  `json:"unit_cost"`
	NewPrice  *decimal.Decimal `json:"new_price,omitempty"` // solo entradas
}

// CreateMovementRequest body para POST /api/movements.
type CreateMovementRequest struct {
	Type           string                `json:"type"`
	Concept        string                `json:"concept,omitempty"`
	Reason         string                `json:"reason,omitempty"`
	AuditSessionID *string               `json:"audit_session_id,omitempty"`
	Lines          []MovementLineRequest `json:"lines"`
}

// UpdateMovementRequest body para PUT /api/movements/:id. Las líneas
// reemplazan por completo a las existentes.
type UpdateMovementRequest struct {
	Type    string                `json:"type"`
	Concept string                `json:"concept,omitempty"`
	Reason  string                `json:"reason,omitempty"`
	Lines   []MovementLineRequest `json:"lines"`
}

// MovementDetailDTO una línea persistida.
type MovementDetailDTO struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitCost  decimal.Decimal  `json:"unit_cost"`
	NewPrice  *decimal.Decimal `json:"new_price,omitempty"`
}

// MovementDTO cabecera con sus líneas.
type MovementDTO struct {
	ID             string              `json:"id"`
	Type           string              `json:"type"`
	Concept        string              `json:"concept"`
	Reason         string              `json:"reason"`
	Date           time.Time           `json:"date"`
	TotalCost      decimal.Decimal     `json:"total_cost"`
	AuditSessionID *string             `json:"audit_session_id,omitempty"`
	Details        []MovementDetailDTO `json:"details,omitempty"`
}

// KardexEntryDTO una fila del historial de un producto.
type KardexEntryDTO struct {
	MovementID string          `json:"movement_id"`
	Type       string          `json:"type"`
	Concept    string          `json:"concept"`
	Reason     string          `json:"reason"`
	Date       time.Time       `json:"date"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// LowStockItemDTO sugerencia de reposición para un producto bajo punto de reorden.
type LowStockItemDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       int64           `json:"current_stock"`
	MinStock           int64           `json:"min_stock"`
	SuggestedOrderQty  int64           `json:"suggested_order_qty"` // stock ideal (2x reorden) - stock actual
	UnitCost           decimal.Decimal `json:"unit_cost"`           // último costo conocido
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"`
}
