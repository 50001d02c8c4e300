package usecase

import (
	"context"

	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
)

// Límites del listado de bitácora.
const (
	DefaultAuditLimit = 10
	MaxAuditLimit     = 100
)

// AuditUseCase consulta de la bitácora. Solo lectura: las entradas las escribe el coordinador.
type AuditUseCase struct {
	logs repository.AuditLogRepository
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(logs repository.AuditLogRepository) *AuditUseCase {
	return &AuditUseCase{logs: logs}
}

// Recent las entradas más recientes primero. limit <= 0 usa 10; el máximo es 100.
func (uc *AuditUseCase) Recent(ctx context.Context, limit int) (*dto.AuditLogListResponse, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}
	entries, err := uc.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, domain.Persistence("listar bitácora", err)
	}
	total, err := uc.logs.Count(ctx)
	if err != nil {
		return nil, domain.Persistence("contar bitácora", err)
	}
	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.AuditLogResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Action:    e.Action,
			Timestamp: e.Timestamp.UTC(),
		})
	}
	return &dto.AuditLogListResponse{Items: items, Total: total}, nil
}
