package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/kardex-core/internal/application/dto"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
)

// InventoryHandler maneja las consultas de inventario: último costo, kardex
// por producto y lista de reposición (protegido).
type InventoryHandler struct {
	ledger   *inventory.LedgerUseCase
	costUC   *inventory.CostUseCase
	lowStock *inventory.LowStockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, costUC *inventory.CostUseCase, lowStock *inventory.LowStockUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, costUC: costUC, lowStock: lowStock}
}

// LastCost godoc
// @Summary      Último costo conocido de un producto
// @Description  Costo unitario de la línea más reciente del historial, o costo
//               de catálogo si el producto no tiene movimientos.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/last-cost [get]
func (h *InventoryHandler) LastCost(c *fiber.Ctx) error {
	cost, err := h.costUC.LastCost(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": c.Params("id"), "last_cost": cost})
}

// Kardex godoc
// @Summary      Historial de movimientos de un producto (kardex)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "default 50"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {array}  dto.KardexEntryDTO
// @Router       /api/products/{id}/kardex [get]
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	entries, err := h.ledger.Kardex(c.Context(), c.Params("id"), from, to, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.KardexEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.KardexEntryDTO{
			MovementID: e.Header.ID,
			Type:       e.Header.Type,
			Concept:    e.Header.Concept,
			Reason:     e.Header.Reason,
			Date:       e.Header.Date,
			Quantity:   e.Detail.Quantity,
			UnitCost:   e.Detail.UnitCost,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "entries": out})
}

// LowStock godoc
// @Summary      Lista de reposición
// @Description  Productos por debajo de su punto de reorden con cantidad
//               sugerida de pedido, mayor déficit primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "default 100"
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	items, err := h.lowStock.GenerateLowStockList(c.Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}
