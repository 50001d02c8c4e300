package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
	"github.com/jhoicas/authlog-api/internal/infrastructure/memory"
	"github.com/jhoicas/authlog-api/internal/infrastructure/postgres"
	"github.com/jhoicas/authlog-api/pkg/config"
	"github.com/jhoicas/authlog-api/pkg/logger"
)

// Backend repositorios de lectura más el runner transaccional de un mismo store.
type Backend struct {
	Driver    string
	Tx        audit.TxRunner
	Users     repository.UserRepository
	Roles     repository.RoleRepository
	AuditLogs repository.AuditLogRepository

	close func()
}

// Close libera el pool si lo hay.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open construye el backend indicado por cfg.Store.Driver. Con postgres aplica
// las migraciones pendientes si cfg.DB.AutoMigrate está activo.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		st := memory.NewStore()
		log.Warn().Msg("store en memoria: los datos se pierden al reiniciar")
		return &Backend{
			Driver:    config.StoreDriverMemory,
			Tx:        st,
			Users:     st.Users(),
			Roles:     st.Roles(),
			AuditLogs: st.AuditLogs(),
		}, nil

	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
		}
		return &Backend{
			Driver:    config.StoreDriverPostgres,
			Tx:        postgres.NewTxRunner(pool),
			Users:     postgres.NewUserRepository(pool),
			Roles:     postgres.NewRoleRepository(pool),
			AuditLogs: postgres.NewAuditLogRepository(pool),
			close:     pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("store desconocido: %q", cfg.Store.Driver)
	}
}
