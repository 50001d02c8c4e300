// seed_admin asegura el rol Admin y el usuario administrador inicial, auditando cada paso
// con el actor de sistema. Es idempotente: si ya existen no cambia nada.
//
// Uso: go run ./cmd/seed_admin [usuario] [contraseña]
// Sin argumentos usa ADMIN_USERNAME y ADMIN_PASSWORD. Requiere STORE_DRIVER=postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/application/usecase"
	"github.com/jhoicas/authlog-api/internal/infrastructure/storage"
	"github.com/jhoicas/authlog-api/pkg/config"
	"github.com/jhoicas/authlog-api/pkg/logger"
	"github.com/jhoicas/authlog-api/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	userName, pw := cfg.Seed.AdminUserName, cfg.Seed.AdminPassword
	if len(os.Args) > 2 {
		userName, pw = os.Args[1], os.Args[2]
	}
	if userName == "" || pw == "" {
		fmt.Fprintln(os.Stderr, "Uso: seed_admin <usuario> <contraseña> (o ADMIN_USERNAME / ADMIN_PASSWORD)")
		os.Exit(2)
	}

	if err := requirePersistentStore(cfg.Store.Driver); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar store")
	}
	defer backend.Close()

	coord := audit.NewCoordinator(backend.Tx, audit.WithLogger(log))
	hasher := password.NewHasher(cfg.Password.Policy(), cfg.Password.BcryptCost)

	res, err := usecase.BootstrapAdmin(ctx,
		usecase.NewRoleUseCase(backend.Roles, coord),
		usecase.NewUserUseCase(backend.Users, backend.Roles, hasher, coord),
		userName, pw)
	if err != nil {
		log.Error().Err(err).Msg("bootstrap del administrador")
		os.Exit(1)
	}
	fmt.Printf("admin %s (ID: %s) rol creado=%t usuario creado=%t rol asignado=%t\n",
		userName, res.AdminUserID, res.RoleCreated, res.UserCreated, res.RoleAssigned)
}

// requirePersistentStore el store en memoria muere con el proceso: sembrarlo no tiene efecto.
func requirePersistentStore(driver string) error {
	if driver == config.StoreDriverMemory {
		return fmt.Errorf("seed_admin: STORE_DRIVER=%s no persiste datos; use %s (en memoria, cmd/api siembra con ADMIN_USERNAME/ADMIN_PASSWORD)",
			config.StoreDriverMemory, config.StoreDriverPostgres)
	}
	return nil
}
