package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/authlog-api/internal/domain/entity"
	"github.com/jhoicas/authlog-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

const roleColumns = `id, name, normalized_name, created_at, updated_at`

// RoleRepo implementación del puerto RoleRepository sobre PostgreSQL.
type RoleRepo struct {
	db Querier
}

// NewRoleRepository construye el adaptador de persistencia para roles (pool o tx).
func NewRoleRepository(db Querier) *RoleRepo {
	return &RoleRepo{db: db}
}

// Create persiste un rol; ErrConflict si el nombre ya existe.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	query := `INSERT INTO roles (` + roleColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, role.ID, role.Name, role.NormalizedName, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert role: %w", mapWriteError(err))
	}
	return nil
}

// GetByID obtiene un rol por ID.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.findOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

// GetByName obtiene un rol por nombre, sin distinguir mayúsculas.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.findOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE normalized_name = $1`, entity.NormalizeName(name))
}

func (r *RoleRepo) findOne(ctx context.Context, query string, arg any) (*entity.Role, error) {
	var role entity.Role
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&role.ID, &role.Name, &role.NormalizedName, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

// List todos los roles ordenados por nombre.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY normalized_name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	list := []*entity.Role{}
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.NormalizedName, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, &role)
	}
	return list, rows.Err()
}

// Update renombra el rol.
func (r *RoleRepo) Update(ctx context.Context, role *entity.Role) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE roles SET name = $2, normalized_name = $3, updated_at = $4 WHERE id = $1`,
		role.ID, role.Name, role.NormalizedName, role.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update role: %w", mapWriteError(err))
	}
	return requireAffected(tag)
}

// Delete elimina el rol; las filas de user_roles caen por ON DELETE CASCADE.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return requireAffected(tag)
}
