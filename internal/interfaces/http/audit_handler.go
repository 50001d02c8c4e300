package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/authlog-api/internal/application/usecase"
)

// AuditHandler consulta de la bitácora.
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Recent godoc
// @Summary      Entradas recientes de la bitácora
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Cantidad (máx. 100)"  default(10)
// @Success      200    {object}  dto.AuditLogListResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Router       /api/audit-logs [get]
func (h *AuditHandler) Recent(c *fiber.Ctx) error {
	out, err := h.uc.Recent(c.UserContext(), c.QueryInt("limit", usecase.DefaultAuditLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
