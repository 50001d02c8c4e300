package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/swaggo/swag"

	"github.com/jhoicas/authlog-api/docs"
	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/application/auth"
	"github.com/jhoicas/authlog-api/internal/application/usecase"
	"github.com/jhoicas/authlog-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/authlog-api/internal/interfaces/http"
	"github.com/jhoicas/authlog-api/pkg/config"
	"github.com/jhoicas/authlog-api/pkg/jwt"
	"github.com/jhoicas/authlog-api/pkg/logger"
	"github.com/jhoicas/authlog-api/pkg/password"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar store")
	}
	defer backend.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	coord := audit.NewCoordinator(backend.Tx,
		audit.WithLogger(log.Component("audit")),
		audit.WithRegisterer(registry),
	)
	hasher := password.NewHasher(cfg.Password.Policy(), cfg.Password.BcryptCost)
	signer, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar JWT")
	}

	roleUC := usecase.NewRoleUseCase(backend.Roles, coord)
	userUC := usecase.NewUserUseCase(backend.Users, backend.Roles, hasher, coord)
	auditUC := usecase.NewAuditUseCase(backend.AuditLogs)
	authUC := auth.NewAuthUseCase(backend.Users, userUC, hasher, signer)

	if cfg.Seed.AdminUserName != "" && cfg.Seed.AdminPassword != "" {
		res, err := usecase.BootstrapAdmin(ctx, roleUC, userUC, cfg.Seed.AdminUserName, cfg.Seed.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("bootstrap del administrador")
		}
		log.Info().
			Bool("role_created", res.RoleCreated).
			Bool("user_created", res.UserCreated).
			Bool("role_assigned", res.RoleAssigned).
			Str("admin_id", res.AdminUserID).
			Msg("administrador inicial verificado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	metrics := httpRouter.NewMetrics(registry, registry)
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(metrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    docs.SwaggerInfo.Title,
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger UI deshabilitado")
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": backend.Driver})
	})
	app.Get("/metrics", metrics.Handler())

	var limiter *httpRouter.RateLimiter
	if cfg.RateLimit.PerSecond > 0 {
		limiter = httpRouter.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	}
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		RoleUC:      roleUC,
		AuditUC:     auditUC,
		Signer:      signer,
		AuthLimiter: limiter,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
