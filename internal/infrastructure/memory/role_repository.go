package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

type roleRepository struct {
	acc accessor
}

func (r *roleRepository) Create(ctx context.Context, role *entity.Role) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.roles[role.ID]; ok {
			return domain.ErrConflict
		}
		if findRoleByName(st, role.NormalizedName) != nil {
			return domain.ErrConflict
		}
		st.roles[role.ID] = *role
		return nil
	})
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	var out *entity.Role
	err := r.acc(false, func(st *state) error {
		if role, ok := st.roles[id]; ok {
			out = &role
		}
		return nil
	})
	return out, err
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	var out *entity.Role
	err := r.acc(false, func(st *state) error {
		out = findRoleByName(st, entity.NormalizeName(name))
		return nil
	})
	return out, err
}

func (r *roleRepository) List(ctx context.Context) ([]*entity.Role, error) {
	var out []*entity.Role
	err := r.acc(false, func(st *state) error {
		out = make([]*entity.Role, 0, len(st.roles))
		for _, role := range st.roles {
			role := role
			out = append(out, &role)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].NormalizedName < out[j].NormalizedName })
		return nil
	})
	return out, err
}

func (r *roleRepository) Update(ctx context.Context, role *entity.Role) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.roles[role.ID]; !ok {
			return domain.ErrConcurrencyConflict
		}
		if other := findRoleByName(st, role.NormalizedName); other != nil && other.ID != role.ID {
			return domain.ErrConflict
		}
		st.roles[role.ID] = *role
		return nil
	})
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.roles[id]; !ok {
			return domain.ErrConcurrencyConflict
		}
		delete(st.roles, id)
		for _, set := range st.userRoles {
			delete(set, id)
		}
		return nil
	})
}

func findRoleByName(st *state, normalized string) *entity.Role {
	for _, role := range st.roles {
		if role.NormalizedName == normalized {
			role := role
			return &role
		}
	}
	return nil
}
