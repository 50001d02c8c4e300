package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

type userRepository struct {
	acc accessor
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return domain.ErrConflict
		}
		if findUserByName(st, user.NormalizedUserName) != nil {
			return domain.ErrConflict
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.acc(false, func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepository) GetByUserName(ctx context.Context, userName string) (*entity.User, error) {
	var out *entity.User
	err := r.acc(false, func(st *state) error {
		out = findUserByName(st, entity.NormalizeName(userName))
		return nil
	})
	return out, err
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	err := r.acc(false, func(st *state) error {
		all := make([]*entity.User, 0, len(st.users))
		for _, u := range st.users {
			u := u
			all = append(all, &u)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].NormalizedUserName < all[j].NormalizedUserName })
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.acc(false, func(st *state) error {
		n = len(st.users)
		return nil
	})
	return n, err
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return domain.ErrConcurrencyConflict
		}
		if other := findUserByName(st, user.NormalizedUserName); other != nil && other.ID != user.ID {
			return domain.ErrConflict
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return domain.ErrConcurrencyConflict
		}
		delete(st.users, id)
		delete(st.userRoles, id)
		return nil
	})
}

func (r *userRepository) AddToRole(ctx context.Context, userID, roleID string) error {
	return r.acc(true, func(st *state) error {
		if _, ok := st.users[userID]; !ok {
			return domain.ErrConcurrencyConflict
		}
		if _, ok := st.roles[roleID]; !ok {
			return domain.ErrConcurrencyConflict
		}
		set, ok := st.userRoles[userID]
		if !ok {
			set = map[string]struct{}{}
			st.userRoles[userID] = set
		}
		if _, dup := set[roleID]; dup {
			return domain.ErrConflict
		}
		set[roleID] = struct{}{}
		return nil
	})
}

func (r *userRepository) RemoveFromRole(ctx context.Context, userID, roleID string) error {
	return r.acc(true, func(st *state) error {
		set := st.userRoles[userID]
		if _, ok := set[roleID]; !ok {
			return domain.ErrConcurrencyConflict
		}
		delete(set, roleID)
		return nil
	})
}

func (r *userRepository) IsInRole(ctx context.Context, userID, roleID string) (bool, error) {
	var in bool
	err := r.acc(false, func(st *state) error {
		_, in = st.userRoles[userID][roleID]
		return nil
	})
	return in, err
}

func (r *userRepository) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	names := []string{}
	err := r.acc(false, func(st *state) error {
		for roleID := range st.userRoles[userID] {
			if role, ok := st.roles[roleID]; ok {
				names = append(names, role.Name)
			}
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}

func findUserByName(st *state, normalized string) *entity.User {
	for _, u := range st.users {
		if u.NormalizedUserName == normalized {
			u := u
			return &u
		}
	}
	return nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
