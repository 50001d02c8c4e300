package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
)

// RoleUseCase administración de roles. Toda mutación pasa por el coordinador de auditoría.
type RoleUseCase struct {
	roles repository.RoleRepository
	coord *audit.Coordinator
	now   func() time.Time
}

// NewRoleUseCase construye el caso de uso con el repositorio de lectura y el coordinador.
func NewRoleUseCase(roles repository.RoleRepository, coord *audit.Coordinator) *RoleUseCase {
	return &RoleUseCase{roles: roles, coord: coord, now: time.Now}
}

// List todos los roles ordenados por nombre.
func (uc *RoleUseCase) List(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := uc.roles.List(ctx)
	if err != nil {
		return nil, domain.Persistence("listar roles", err)
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out, nil
}

// GetByID obtiene un rol; NotFoundError si no existe.
func (uc *RoleUseCase) GetByID(ctx context.Context, id string) (*dto.RoleResponse, error) {
	role, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRoleResponse(role)
	return &resp, nil
}

// Create crea un rol con nombre único (sin distinguir mayúsculas).
func (uc *RoleUseCase) Create(ctx context.Context, actor audit.Actor, in dto.RoleRequest) (*dto.RoleResponse, error) {
	name := strings.TrimSpace(in.RoleName)
	if msgs := validateName("el nombre del rol", name); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}
	existing, err := uc.roles.GetByName(ctx, name)
	if err != nil {
		return nil, domain.Persistence("buscar rol", err)
	}
	if existing != nil {
		return nil, roleExists(name)
	}

	role, err := audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.Role]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.Role, error) {
			now := uc.now().UTC()
			r := &entity.Role{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
			r.Rename(name)
			if err := repos.Roles.Create(ctx, r); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return nil, roleExists(name)
				}
				return nil, err
			}
			return r, nil
		},
		Describe: func(r *entity.Role) string {
			return fmt.Sprintf("rol '%s' (ID: %s) creado", r.Name, r.ID)
		},
	})
	if err != nil {
		return nil, err
	}
	resp := toRoleResponse(role)
	return &resp, nil
}

// Update renombra un rol. Renombrar a un nombre ocupado por otro rol es error de validación,
// igual que renombrar el rol Admin.
func (uc *RoleUseCase) Update(ctx context.Context, actor audit.Actor, id string, in dto.RoleRequest) error {
	name := strings.TrimSpace(in.RoleName)
	current, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if msgs := validateName("el nombre del rol", name); len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	if isAdminRole(current) && name != current.Name {
		return adminRoleLocked(current.Name)
	}
	if other, err := uc.roles.GetByName(ctx, name); err != nil {
		return domain.Persistence("buscar rol", err)
	} else if other != nil && other.ID != current.ID {
		return roleExists(name)
	}

	oldName := current.Name
	_, err = audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.Role]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.Role, error) {
			r := *current
			r.Rename(name)
			r.UpdatedAt = uc.now().UTC()
			if err := repos.Roles.Update(ctx, &r); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return nil, roleExists(name)
				}
				return nil, err
			}
			return &r, nil
		},
		Describe: func(r *entity.Role) string {
			return fmt.Sprintf("rol '%s' (ID: %s) actualizado a '%s'", oldName, r.ID, r.Name)
		},
		Recheck: uc.recheck(id),
	})
	return err
}

// Delete elimina un rol y lo quita de todos los usuarios que lo tenían.
// El rol Admin no se puede eliminar.
func (uc *RoleUseCase) Delete(ctx context.Context, actor audit.Actor, id string) error {
	current, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if isAdminRole(current) {
		return adminRoleLocked(current.Name)
	}
	_, err = audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.Role]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.Role, error) {
			return current, repos.Roles.Delete(ctx, current.ID)
		},
		Describe: func(r *entity.Role) string {
			return fmt.Sprintf("rol '%s' (ID: %s) eliminado", r.Name, r.ID)
		},
		Recheck: uc.recheck(id),
	})
	return err
}

func (uc *RoleUseCase) load(ctx context.Context, id string) (*entity.Role, error) {
	if err := checkID(resourceRole, id); err != nil {
		return nil, err
	}
	role, err := uc.roles.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("leer rol", err)
	}
	if role == nil {
		return nil, domain.NewNotFoundError(resourceRole, id)
	}
	return role, nil
}

func (uc *RoleUseCase) recheck(id string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := uc.load(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return nil
	}
}

func toRoleResponse(r *entity.Role) dto.RoleResponse {
	return dto.RoleResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
