package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores de negocio expuestos en /metrics.
var (
	MovementsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kardex_movements_created_total",
		Help: "Movimientos de inventario creados, por tipo.",
	}, []string{"type"})

	MovementsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kardex_movements_deleted_total",
		Help: "Movimientos eliminados (con reversa de stock).",
	})

	InsufficientStockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kardex_insufficient_stock_rejections_total",
		Help: "Operaciones rechazadas por stock insuficiente.",
	})

	AuditSessionsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kardex_audit_sessions_finalized_total",
		Help: "Sesiones de auditoría cerradas.",
	})
)
