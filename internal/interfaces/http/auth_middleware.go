package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/pkg/jwt"
)

// Locals keys para los datos del token en Fiber.
const (
	LocalUserID   = "user_id"
	LocalUserName = "user_name"
	LocalRoles    = "roles"
)

// AuthMiddleware valida el Bearer Token JWT y deja UserID, UserName y Roles en c.Locals.
func AuthMiddleware(signer *jwt.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := signer.Parse(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserName, claims.UserName)
		c.Locals(LocalRoles, claims.Roles)
		return c.Next()
	}
}

// RequireRole deja pasar si el token trae alguno de los roles indicados; 403 si no.
// Los nombres se comparan normalizados, igual que la unicidad en el store.
func RequireRole(roles ...string) fiber.Handler {
	wanted := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		wanted[entity.NormalizeName(r)] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "autenticación requerida"})
		}
		for _, have := range GetRoles(c) {
			if _, ok := wanted[entity.NormalizeName(have)]; ok {
				return c.Next()
			}
		}
		return forbidden(c)
	}
}

// RoleChecker consulta la pertenencia vigente de un usuario a un rol.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, roleName string) (bool, error)
}

// RequireCurrentRole confirma contra el store que el usuario del token sigue teniendo
// el rol. Quitar el rol surte efecto sin esperar a que el token expire.
func RequireCurrentRole(checker RoleChecker, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := checker.HasRole(c.UserContext(), GetUserID(c), role)
		if err != nil {
			return writeError(c, err)
		}
		if !ok {
			return forbidden(c)
		}
		return c.Next()
	}
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "no tiene permisos para esta operación"})
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetUserName devuelve el nombre de usuario del token.
func GetUserName(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserName).(string)
	return s
}

// GetRoles devuelve los roles del token.
func GetRoles(c *fiber.Ctx) []string {
	r, _ := c.Locals(LocalRoles).([]string)
	return r
}

// actorFrom el administrador autenticado es el actor de la mutación.
func actorFrom(c *fiber.Ctx) audit.Actor {
	return audit.UserActor(GetUserID(c))
}
