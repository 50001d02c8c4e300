package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo bitácora append-only sobre PostgreSQL. No expone UPDATE ni DELETE.
type AuditLogRepo struct {
	db Querier
}

// NewAuditLogRepository construye el adaptador (pool o tx).
func NewAuditLogRepository(db Querier) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// Append inserta una entrada.
func (r *AuditLogRepo) Append(ctx context.Context, entry *entity.AuditLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, action, logged_at) VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.UserID, entry.Action, entry.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", mapWriteError(err))
	}
	return nil
}

// ListRecent las limit entradas más recientes, de la más nueva a la más antigua.
func (r *AuditLogRepo) ListRecent(ctx context.Context, limit int) ([]*entity.AuditLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, action, logged_at FROM audit_logs ORDER BY logged_at DESC, id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	list := []*entity.AuditLog{}
	for rows.Next() {
		var e entity.AuditLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Count total de entradas.
func (r *AuditLogRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit logs: %w", err)
	}
	return n, nil
}
