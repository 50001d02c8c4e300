package repository

import (
	"context"

	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

// AuditLogRepository almacén de solo inserción para la bitácora de auditoría.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditLog) error
	// ListRecent devuelve las entradas más recientes primero (por timestamp).
	ListRecent(ctx context.Context, limit int) ([]*entity.AuditLog, error)
	Count(ctx context.Context) (int, error)
}

// TxRepositories repositorios atados a una misma transacción.
type TxRepositories struct {
	Users     UserRepository
	Roles     RoleRepository
	AuditLogs AuditLogRepository
}
