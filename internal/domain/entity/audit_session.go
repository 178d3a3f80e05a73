package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una sesión de auditoría física.
const (
	AuditStatusOpen      = "OPEN"
	AuditStatusClosed    = "CLOSED"
	AuditStatusCancelled = "CANCELLED" // descartada sin efecto en el ledger
)

// Tipos de sesión de auditoría.
const (
	AuditTypeFull    = "FULL"    // conteo completo de bodega
	AuditTypePartial = "PARTIAL" // conteo parcial (categoría, pasillo, etc.)
)

// AuditSession representa una sesión de conteo físico. Solo puede existir una
// sesión OPEN a la vez; al cerrarse queda inmutable y nunca se reabre.
// NetVariance es el impacto monetario neto de los ajustes (faltante = negativo).
type AuditSession struct {
	ID          string
	Type        string
	Status      string
	StartDate   time.Time
	EndDate     *time.Time
	NetVariance decimal.Decimal
	CreatedBy   string
}

// IsOpen indica si la sesión sigue abierta.
func (s *AuditSession) IsOpen() bool {
	return s.Status == AuditStatusOpen
}
