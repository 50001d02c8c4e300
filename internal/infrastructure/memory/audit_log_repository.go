package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

type auditLogRepository struct {
	acc accessor
}

func (r *auditLogRepository) Append(ctx context.Context, entry *entity.AuditLog) error {
	return r.acc(true, func(st *state) error {
		for _, e := range st.audit {
			if e.ID == entry.ID {
				return domain.ErrConflict
			}
		}
		cp := *entry
		if entry.UserID != nil {
			id := *entry.UserID
			cp.UserID = &id
		}
		st.audit = append(st.audit, cp)
		return nil
	})
}

func (r *auditLogRepository) ListRecent(ctx context.Context, limit int) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	err := r.acc(false, func(st *state) error {
		all := make([]*entity.AuditLog, 0, len(st.audit))
		for i := len(st.audit) - 1; i >= 0; i-- {
			e := st.audit[i]
			all = append(all, &e)
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
		out = page(all, limit, 0)
		return nil
	})
	return out, err
}

func (r *auditLogRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.acc(false, func(st *state) error {
		n = len(st.audit)
		return nil
	})
	return n, err
}
