package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP.
//
//	validación / conflicto de nombre -> 400 con errors[]
//	no encontrado                    -> 404
//	credenciales                     -> 401
//	persistencia u otro              -> 500 genérico con detail
func writeError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "la solicitud no es válida", Errors: verr.Messages,
		})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "la solicitud no es válida", Errors: []string{err.Error()},
		})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: nf.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: domain.ErrPersistence.Error(), Detail: err.Error(),
		})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: "INVALID_BODY", Message: "cuerpo inválido", Errors: []string{"el cuerpo debe ser JSON válido"},
	})
}
