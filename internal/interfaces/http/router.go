package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/kardex-core/internal/application/audit"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *inventory.ProductUseCase
	Ledger    *inventory.LedgerUseCase
	CostUC    *inventory.CostUseCase
	LowStock  *inventory.LowStockUseCase
	AuditUC   *audit.SessionUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo de productos (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	// Movimientos del kardex (protegido)
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger)
	movements.Post("/", movementHandler.Create)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id", movementHandler.Update)
	movements.Delete("/:id", movementHandler.Delete)
	movements.Delete("/details/:id", movementHandler.DeleteDetail)

	// Consultas de inventario (protegido)
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.CostUC, deps.LowStock)
	protected.Get("/products/:id/last-cost", inventoryHandler.LastCost)
	protected.Get("/products/:id/kardex", inventoryHandler.Kardex)
	protected.Get("/inventory/low-stock", inventoryHandler.LowStock)

	// Sesiones de auditoría física (protegido)
	sessions := protected.Group("/audit-sessions")
	auditHandler := NewAuditHandler(deps.AuditUC)
	sessions.Post("/", auditHandler.Start)
	sessions.Get("/:id", auditHandler.GetByID)
	sessions.Post("/:id/adjust", auditHandler.Adjust)
	sessions.Post("/:id/finalize", auditHandler.Finalize)
	sessions.Post("/:id/cancel", auditHandler.Cancel)
}
