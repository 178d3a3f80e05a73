package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/kardex-core/internal/application/audit"
	"github.com/tu-usuario/kardex-core/internal/application/dto"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/infrastructure/metrics"
)

// AuditHandler maneja las sesiones de auditoría física (protegido).
type AuditHandler struct {
	uc *audit.SessionUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.SessionUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

func toSessionDTO(s *entity.AuditSession) dto.AuditSessionDTO {
	return dto.AuditSessionDTO{
		ID:          s.ID,
		Type:        s.Type,
		Status:      s.Status,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		NetVariance: s.NetVariance,
	}
}

// Start godoc
// @Summary      Abrir sesión de conteo físico
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartAuditSessionRequest  true  "type: FULL o PARTIAL"
// @Success      201   {object}  dto.AuditSessionDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/audit-sessions [post]
func (h *AuditHandler) Start(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.StartAuditSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	session, err := h.uc.StartSession(c.Context(), userID, in.Type)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSessionDTO(session))
}

// Adjust godoc
// @Summary      Ajuste rápido de un producto dentro de la sesión
// @Description  Emite de inmediato el movimiento compensatorio por la
//               diferencia entre conteo físico y stock del sistema.
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Param        body  body  dto.AdjustSingleRequest  true  "product_id, physical_qty"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/audit-sessions/{id}/adjust [post]
func (h *AuditHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustSingleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.AdjustSingle(c.Context(), c.Params("id"), userID, in.ProductID, in.PhysicalQty); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ajuste aplicado"})
}

// Finalize godoc
// @Summary      Cerrar la sesión reconciliando el conteo completo
// @Description  Emite a lo más un movimiento IN y un OUT agregados por las
//               varianzas y cierra la sesión con la varianza neta monetaria.
// @Tags         audit
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la sesión"
// @Param        body  body  dto.FinalizeSessionRequest  true  "counts: producto → cantidad física"
// @Success      200   {object}  dto.AuditSessionDTO
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/audit-sessions/{id}/finalize [post]
func (h *AuditHandler) Finalize(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.FinalizeSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	session, err := h.uc.FinalizeSession(c.Context(), c.Params("id"), userID, in.Counts)
	if err != nil {
		return respondError(c, err)
	}
	metrics.AuditSessionsFinalized.Inc()
	return c.JSON(toSessionDTO(session))
}

// Cancel godoc
// @Summary      Descartar una sesión abierta sin efecto en el ledger
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.AuditSessionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/audit-sessions/{id}/cancel [post]
func (h *AuditHandler) Cancel(c *fiber.Ctx) error {
	session, err := h.uc.CancelSession(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSessionDTO(session))
}

// GetByID godoc
// @Summary      Consultar una sesión de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.AuditSessionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/audit-sessions/{id} [get]
func (h *AuditHandler) GetByID(c *fiber.Ctx) error {
	session, err := h.uc.GetSession(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSessionDTO(session))
}
