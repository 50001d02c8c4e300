package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
	"github.com/jhoicas/authlog-api/pkg/password"
)

// UserUseCase administración de usuarios y de su pertenencia a roles.
type UserUseCase struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	hasher *password.Hasher
	coord  *audit.Coordinator
	now    func() time.Time
}

// NewUserUseCase construye el caso de uso con los repositorios de lectura, el hasher y el coordinador.
func NewUserUseCase(users repository.UserRepository, roles repository.RoleRepository, hasher *password.Hasher, coord *audit.Coordinator) *UserUseCase {
	return &UserUseCase{users: users, roles: roles, hasher: hasher, coord: coord, now: time.Now}
}

// List usuarios con sus roles, paginado.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	users, err := uc.users.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.Persistence("listar usuarios", err)
	}
	total, err := uc.users.Count(ctx)
	if err != nil {
		return nil, domain.Persistence("contar usuarios", err)
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		roles, err := uc.users.RolesForUser(ctx, u.ID)
		if err != nil {
			return nil, domain.Persistence("leer roles del usuario", err)
		}
		items = append(items, toUserResponse(u, roles))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// GetByID obtiene un usuario con sus roles; NotFoundError si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	roles, err := uc.users.RolesForUser(ctx, user.ID)
	if err != nil {
		return nil, domain.Persistence("leer roles del usuario", err)
	}
	resp := toUserResponse(user, roles)
	return &resp, nil
}

// Create alta de usuario por un administrador (o por el sistema al sembrar).
func (uc *UserUseCase) Create(ctx context.Context, actor audit.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	return uc.create(ctx, actor, in.Username, in.Password, "creado")
}

// Register auto-registro: el usuario creado figura como actor de su propia alta.
func (uc *UserUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	return uc.create(ctx, audit.SubjectActor(), in.Username, in.Password, "registrado")
}

func (uc *UserUseCase) create(ctx context.Context, actor audit.Actor, userName, pw, verb string) (*dto.UserResponse, error) {
	userName = strings.TrimSpace(userName)
	msgs := validateName("el nombre de usuario", userName)
	msgs = append(msgs, uc.hasher.Validate(pw)...)
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}
	existing, err := uc.users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, domain.Persistence("buscar usuario", err)
	}
	if existing != nil {
		return nil, userNameTaken(userName)
	}
	hash, err := uc.hasher.Hash(pw)
	if err != nil {
		return nil, domain.Persistence("hash de contraseña", err)
	}

	user, err := audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.User]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.User, error) {
			now := uc.now().UTC()
			u := &entity.User{ID: uuid.NewString(), PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
			u.Rename(userName)
			if err := repos.Users.Create(ctx, u); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return nil, userNameTaken(userName)
				}
				return nil, err
			}
			return u, nil
		},
		Describe: func(u *entity.User) string {
			return fmt.Sprintf("usuario '%s' (ID: %s) %s", u.UserName, u.ID, verb)
		},
		Subject: func(u *entity.User) string { return u.ID },
	})
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user, []string{})
	return &resp, nil
}

// Update cambia nombre y/o contraseña. Debe venir al menos uno de los dos campos.
func (uc *UserUseCase) Update(ctx context.Context, actor audit.Actor, id string, in dto.UpdateUserRequest) error {
	current, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if in.Username == nil && in.Password == nil {
		return domain.NewValidationError("debe indicar username o password")
	}

	var msgs []string
	newName := current.UserName
	if in.Username != nil {
		newName = strings.TrimSpace(*in.Username)
		msgs = append(msgs, validateName("el nombre de usuario", newName)...)
	}
	if in.Password != nil {
		msgs = append(msgs, uc.hasher.Validate(*in.Password)...)
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	if in.Username != nil {
		other, err := uc.users.GetByUserName(ctx, newName)
		if err != nil {
			return domain.Persistence("buscar usuario", err)
		}
		if other != nil && other.ID != current.ID {
			return userNameTaken(newName)
		}
	}
	hash := current.PasswordHash
	if in.Password != nil {
		if hash, err = uc.hasher.Hash(*in.Password); err != nil {
			return domain.Persistence("hash de contraseña", err)
		}
	}

	oldName := current.UserName
	_, err = audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.User]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.User, error) {
			u := *current
			u.Rename(newName)
			u.PasswordHash = hash
			u.UpdatedAt = uc.now().UTC()
			if err := repos.Users.Update(ctx, &u); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return nil, userNameTaken(newName)
				}
				return nil, err
			}
			return &u, nil
		},
		Describe: func(u *entity.User) string {
			action := fmt.Sprintf("usuario '%s' (ID: %s) actualizado", oldName, u.ID)
			if u.UserName != oldName {
				action += fmt.Sprintf("; nuevo nombre: '%s'", u.UserName)
			}
			if in.Password != nil {
				action += "; contraseña cambiada"
			}
			return action
		},
		Recheck: uc.recheckUser(id),
	})
	return err
}

// Delete elimina el usuario y sus asignaciones de rol. La bitácora conserva sus entradas.
func (uc *UserUseCase) Delete(ctx context.Context, actor audit.Actor, id string) error {
	current, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	_, err = audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.User]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.User, error) {
			return current, repos.Users.Delete(ctx, current.ID)
		},
		Describe: func(u *entity.User) string {
			return fmt.Sprintf("usuario '%s' (ID: %s) eliminado", u.UserName, u.ID)
		},
		Recheck: uc.recheckUser(id),
	})
	return err
}

// AssignRole agrega el rol al usuario. Usuario inexistente es NotFound; rol inexistente
// o ya asignado son errores de validación.
func (uc *UserUseCase) AssignRole(ctx context.Context, actor audit.Actor, id string, in dto.RoleRequest) (*dto.MessageResponse, error) {
	user, role, err := uc.lookupMembership(ctx, id, in.RoleName)
	if err != nil {
		return nil, err
	}
	assigned, err := uc.users.IsInRole(ctx, user.ID, role.ID)
	if err != nil {
		return nil, domain.Persistence("verificar rol del usuario", err)
	}
	if assigned {
		return nil, domain.NewValidationError(fmt.Sprintf("el usuario '%s' ya tiene el rol '%s'", user.UserName, role.Name))
	}

	_, err = audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.Role]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.Role, error) {
			if err := repos.Users.AddToRole(ctx, user.ID, role.ID); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return nil, domain.NewValidationError(fmt.Sprintf("el usuario '%s' ya tiene el rol '%s'", user.UserName, role.Name))
				}
				return nil, err
			}
			return role, nil
		},
		Describe: func(r *entity.Role) string {
			return fmt.Sprintf("usuario '%s' (ID: %s) recibió el rol '%s'%s", user.UserName, user.ID, r.Name, byActor(actor))
		},
		Recheck: uc.recheckMembership(id, role),
	})
	if err != nil {
		return nil, err
	}
	return &dto.MessageResponse{Message: fmt.Sprintf("se asignó el rol '%s' a '%s'", role.Name, user.UserName)}, nil
}

// RemoveRole quita el rol al usuario. Error de validación si el rol no existe o no estaba asignado.
func (uc *UserUseCase) RemoveRole(ctx context.Context, actor audit.Actor, id, roleName string) error {
	user, role, err := uc.lookupMembership(ctx, id, roleName)
	if err != nil {
		return err
	}
	notAssigned := domain.NewValidationError(fmt.Sprintf("el usuario '%s' no tiene el rol '%s'", user.UserName, role.Name))
	assigned, err := uc.users.IsInRole(ctx, user.ID, role.ID)
	if err != nil {
		return domain.Persistence("verificar rol del usuario", err)
	}
	if !assigned {
		return notAssigned
	}

	_, err = audit.PerformAudited(ctx, uc.coord, audit.Mutation[*entity.Role]{
		Actor: actor,
		Op: func(ctx context.Context, repos repository.TxRepositories) (*entity.Role, error) {
			return role, repos.Users.RemoveFromRole(ctx, user.ID, role.ID)
		},
		Describe: func(r *entity.Role) string {
			return fmt.Sprintf("usuario '%s' (ID: %s) perdió el rol '%s'%s", user.UserName, user.ID, r.Name, byActor(actor))
		},
		Recheck: func(ctx context.Context) error {
			if err := uc.recheckMembership(id, role)(ctx); err != nil {
				return err
			}
			return notAssigned
		},
	})
	return err
}

// HasRole pertenencia vigente del usuario al rol. Usuario o rol inexistentes son false.
func (uc *UserUseCase) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	if checkID(resourceUser, userID) != nil {
		return false, nil
	}
	role, err := uc.roles.GetByName(ctx, roleName)
	if err != nil {
		return false, domain.Persistence("buscar rol", err)
	}
	if role == nil {
		return false, nil
	}
	ok, err := uc.users.IsInRole(ctx, userID, role.ID)
	if err != nil {
		return false, domain.Persistence("verificar rol del usuario", err)
	}
	return ok, nil
}

// lookupMembership resuelve usuario y rol en paralelo.
func (uc *UserUseCase) lookupMembership(ctx context.Context, id, roleName string) (*entity.User, *entity.Role, error) {
	if err := checkID(resourceUser, id); err != nil {
		return nil, nil, err
	}
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return nil, nil, domain.NewValidationError("el nombre del rol es obligatorio")
	}

	var user *entity.User
	var role *entity.Role
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = uc.users.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		role, err = uc.roles.GetByName(gctx, roleName)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, domain.Persistence("leer usuario y rol", err)
	}
	if user == nil {
		return nil, nil, domain.NewNotFoundError(resourceUser, id)
	}
	if role == nil {
		return nil, nil, roleMissing(roleName)
	}
	return user, role, nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	if err := checkID(resourceUser, id); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("leer usuario", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(resourceUser, id)
	}
	return user, nil
}

func (uc *UserUseCase) recheckUser(id string) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := uc.load(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return nil
	}
}

func (uc *UserUseCase) recheckMembership(id string, role *entity.Role) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := uc.recheckUser(id)(ctx); err != nil {
			return err
		}
		r, err := uc.roles.GetByID(ctx, role.ID)
		if err == nil && r == nil {
			return roleMissing(role.Name)
		}
		return nil
	}
}

func byActor(actor audit.Actor) string {
	if actor.IsSystem() || actor.IsSubject() {
		return ""
	}
	return fmt.Sprintf(" por el administrador (ID: %s)", actor.ID())
}

func toUserResponse(u *entity.User, roles []string) dto.UserResponse {
	if roles == nil {
		roles = []string{}
	}
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.UserName,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
