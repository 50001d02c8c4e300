package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/authlog-api/internal/application/auth"
	"github.com/jhoicas/authlog-api/internal/application/usecase"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	RoleUC      *usecase.RoleUseCase
	AuditUC     *usecase.AuditUseCase
	Signer      *jwt.Signer
	AuthLimiter *RateLimiter // nil = sin límite
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter.Handler())
	}
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token); las mutaciones además el rol Admin,
	// en el token y vigente en el store
	protected := api.Group("/", AuthMiddleware(deps.Signer))
	requireAdmin := RequireRole(entity.RoleAdmin)
	stillAdmin := RequireCurrentRole(deps.UserUC, entity.RoleAdmin)
	adminOnly := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{requireAdmin, stillAdmin, h}
	}

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/", adminOnly(userHandler.Create)...)
	users.Put("/:id", adminOnly(userHandler.Update)...)
	users.Delete("/:id", adminOnly(userHandler.Delete)...)
	users.Post("/:id/assign-role", adminOnly(userHandler.AssignRole)...)
	users.Post("/:id/remove-role", adminOnly(userHandler.RemoveRole)...)
	users.Delete("/:id/roles/:roleName", adminOnly(userHandler.RemoveRoleByName)...)

	roles := protected.Group("/roles")
	roleHandler := NewRoleHandler(deps.RoleUC)
	roles.Get("/", roleHandler.List)
	roles.Get("/:id", roleHandler.GetByID)
	roles.Post("/", adminOnly(roleHandler.Create)...)
	roles.Put("/:id", adminOnly(roleHandler.Update)...)
	roles.Delete("/:id", adminOnly(roleHandler.Delete)...)

	auditHandler := NewAuditHandler(deps.AuditUC)
	protected.Get("/audit-logs", auditHandler.Recent)
}
