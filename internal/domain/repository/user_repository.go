package repository

import (
	"context"

	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User y su relación con roles (DIP).
// Las búsquedas devuelven (nil, nil) cuando el usuario no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUserName(ctx context.Context, userName string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	Count(ctx context.Context) (int, error)
	// Update y Delete devuelven domain.ErrConcurrencyConflict si la fila ya no existe.
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error

	AddToRole(ctx context.Context, userID, roleID string) error
	RemoveFromRole(ctx context.Context, userID, roleID string) error
	IsInRole(ctx context.Context, userID, roleID string) (bool, error)
	// RolesForUser devuelve los nombres de rol ordenados alfabéticamente.
	RolesForUser(ctx context.Context, userID string) ([]string, error)
}
