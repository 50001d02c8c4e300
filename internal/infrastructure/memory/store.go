package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
)

// Store backend en memoria para usuarios, roles y bitácora.
// Run trabaja sobre una copia del estado y la publica solo si fn no falla,
// con lo que una transacción abortada no deja rastro.
type Store struct {
	mu sync.RWMutex
	st *state
}

type state struct {
	users     map[string]entity.User
	roles     map[string]entity.Role
	userRoles map[string]map[string]struct{} // userID -> set(roleID)
	audit     []entity.AuditLog
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: &state{
		users:     map[string]entity.User{},
		roles:     map[string]entity.Role{},
		userRoles: map[string]map[string]struct{}{},
	}}
}

func (s *state) clone() *state {
	c := &state{
		users:     make(map[string]entity.User, len(s.users)),
		roles:     make(map[string]entity.Role, len(s.roles)),
		userRoles: make(map[string]map[string]struct{}, len(s.userRoles)),
		audit:     make([]entity.AuditLog, len(s.audit)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.roles {
		c.roles[k] = v
	}
	for u, set := range s.userRoles {
		cs := make(map[string]struct{}, len(set))
		for r := range set {
			cs[r] = struct{}{}
		}
		c.userRoles[u] = cs
	}
	copy(c.audit, s.audit)
	return c
}

// accessor aplica fn sobre el estado: con locks del Store fuera de tx, directo dentro de Run.
type accessor func(write bool, fn func(st *state) error) error

func (s *Store) access(write bool, fn func(st *state) error) error {
	if write {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

// Run ejecuta fn con repositorios atados a una copia del estado. Commit si fn devuelve nil.
// Las transacciones se serializan.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	var acc accessor = func(_ bool, f func(st *state) error) error { return f(work) }
	if err := fn(reposFor(acc)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Users repositorio de usuarios fuera de transacción.
func (s *Store) Users() repository.UserRepository { return &userRepository{acc: s.access} }

// Roles repositorio de roles fuera de transacción.
func (s *Store) Roles() repository.RoleRepository { return &roleRepository{acc: s.access} }

// AuditLogs repositorio de bitácora fuera de transacción.
func (s *Store) AuditLogs() repository.AuditLogRepository { return &auditLogRepository{acc: s.access} }

func reposFor(acc accessor) repository.TxRepositories {
	return repository.TxRepositories{
		Users:     &userRepository{acc: acc},
		Roles:     &roleRepository{acc: acc},
		AuditLogs: &auditLogRepository{acc: acc},
	}
}
