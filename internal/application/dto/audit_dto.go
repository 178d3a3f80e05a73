package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartAuditSessionRequest body para POST /api/audit-sessions.
type StartAuditSessionRequest struct {
	Type string `json:"type"` // FULL o PARTIAL
}

// AdjustSingleRequest body para POST /api/audit-sessions/:id/adjust.
type AdjustSingleRequest struct {
	ProductID   string `json:"product_id"`
	PhysicalQty int64  `json:"physical_qty"`
}

// FinalizeSessionRequest body para POST /api/audit-sessions/:id/finalize.
// Counts mapea producto → cantidad física contada; nunca se persiste, solo
// los movimientos de varianza resultantes.
type FinalizeSessionRequest struct {
	Counts map[string]int64 `json:"counts"`
}

// AuditSessionDTO representación de una sesión de auditoría en respuestas.
type AuditSessionDTO struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	NetVariance decimal.Decimal `json:"net_variance"`
}
