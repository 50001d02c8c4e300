package repository

import (
	"context"

	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

// RoleRepository define el puerto de persistencia para Role (DIP).
// Create y Update devuelven domain.ErrConflict si el nombre normalizado ya existe.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	// Delete quita además el rol de todos los usuarios que lo tengan.
	Delete(ctx context.Context, id string) error
}
