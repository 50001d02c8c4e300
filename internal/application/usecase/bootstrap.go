package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/authlog-api/internal/application/audit"
	"github.com/jhoicas/authlog-api/internal/application/dto"
	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

// BootstrapResult qué creó BootstrapAdmin (falso si ya existía).
type BootstrapResult struct {
	RoleCreated  bool
	UserCreated  bool
	RoleAssigned bool
	AdminUserID  string
}

// BootstrapAdmin asegura el rol Admin y un usuario administrador. Es idempotente y
// cada paso se audita con el actor de sistema.
func BootstrapAdmin(ctx context.Context, roles *RoleUseCase, users *UserUseCase, userName, pw string) (*BootstrapResult, error) {
	if userName == "" || pw == "" {
		return nil, fmt.Errorf("bootstrap: usuario y contraseña del administrador son obligatorios")
	}
	system := audit.SystemActor()
	res := &BootstrapResult{}

	role, err := roles.roles.GetByName(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, domain.Persistence("buscar rol Admin", err)
	}
	if role == nil {
		if _, err := roles.Create(ctx, system, dto.RoleRequest{RoleName: entity.RoleAdmin}); err != nil {
			return nil, fmt.Errorf("bootstrap: crear rol: %w", err)
		}
		res.RoleCreated = true
	}

	user, err := users.users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, domain.Persistence("buscar administrador", err)
	}
	if user == nil {
		created, err := users.Create(ctx, system, dto.CreateUserRequest{Username: userName, Password: pw})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: crear administrador: %w", err)
		}
		res.UserCreated = true
		res.AdminUserID = created.ID
	} else {
		res.AdminUserID = user.ID
	}

	_, err = users.AssignRole(ctx, system, res.AdminUserID, dto.RoleRequest{RoleName: entity.RoleAdmin})
	switch {
	case err == nil:
		res.RoleAssigned = true
	case errors.Is(err, domain.ErrValidation):
		// ya tenía el rol
	default:
		return nil, fmt.Errorf("bootstrap: asignar rol: %w", err)
	}
	return res, nil
}
