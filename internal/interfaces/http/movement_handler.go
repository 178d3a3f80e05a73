package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/kardex-core/internal/application/dto"
	"github.com/tu-usuario/kardex-core/internal/application/inventory"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/infrastructure/metrics"
)

// MovementHandler maneja las peticiones HTTP del ledger de movimientos (protegido).
type MovementHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.LedgerUseCase) *MovementHandler {
	return &MovementHandler{ledger: ledger}
}

func toLines(in []dto.MovementLineRequest) []inventory.MovementLine {
	lines := make([]inventory.MovementLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, inventory.MovementLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			NewPrice:  l.NewPrice,
		})
	}
	return lines
}

func toMovementDTO(h *entity.MovementHeader, details []*entity.MovementDetail) dto.MovementDTO {
	out := dto.MovementDTO{
		ID:             h.ID,
		Type:           h.Type,
		Concept:        h.Concept,
		Reason:         h.Reason,
		Date:           h.Date,
		TotalCost:      h.TotalCost,
		AuditSessionID: h.AuditSessionID,
	}
	for _, d := range details {
		out.Details = append(out.Details, dto.MovementDetailDTO{
			ID:        d.ID,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitCost:  d.UnitCost,
			NewPrice:  d.NewPrice,
		})
	}
	return out
}

// Create godoc
// @Summary      Registrar movimiento de inventario
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "type, concept, reason, lines"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id, err := h.ledger.CreateMovement(c.Context(), inventory.CreateMovementInput{
		UserID:         userID,
		Type:           in.Type,
		Concept:        in.Concept,
		Reason:         in.Reason,
		Lines:          toLines(in.Lines),
		AuditSessionID: in.AuditSessionID,
	})
	if err != nil {
		return respondError(c, err)
	}
	metrics.MovementsCreated.WithLabelValues(in.Type).Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// Update godoc
// @Summary      Corregir un movimiento (reversa + reaplicación atómica)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "nuevo set de líneas"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	if GetUserID(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.ledger.UpdateMovement(c.Context(), c.Params("id"), inventory.UpdateMovementInput{
		Type:    in.Type,
		Concept: in.Concept,
		Reason:  in.Reason,
		Lines:   toLines(in.Lines),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "movimiento actualizado"})
}

// Delete godoc
// @Summary      Eliminar un movimiento con reversa total de stock
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if err := h.ledger.DeleteMovement(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	metrics.MovementsDeleted.Inc()
	return c.JSON(fiber.Map{"message": "movimiento eliminado"})
}

// DeleteDetail godoc
// @Summary      Eliminar una línea de movimiento con reversa parcial
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la línea"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/details/{id} [delete]
func (h *MovementHandler) DeleteDetail(c *fiber.Ctx) error {
	if err := h.ledger.DeleteMovementDetail(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "línea eliminada"})
}

// GetByID godoc
// @Summary      Obtener un movimiento con sus líneas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	header, details, err := h.ledger.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementDTO(header, details))
}

// List godoc
// @Summary      Listar movimientos por rango de fechas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "default 50"
// @Param        offset  query  int     false  "default 0"
// @Success      200  {array}  dto.MovementDTO
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rango de fechas inválido"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	headers, err := h.ledger.ListMovements(c.Context(), from, to, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(headers))
	for _, hd := range headers {
		out = append(out, toMovementDTO(hd, nil))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// parseDateRange lee from/to en RFC3339 de la query string.
func parseDateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, nil, err
		}
		to = &t
	}
	return from, to, nil
}
