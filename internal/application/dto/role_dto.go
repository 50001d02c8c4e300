package dto

import "time"

// RoleRequest entrada para crear, renombrar, asignar o quitar un rol.
type RoleRequest struct {
	RoleName string `json:"roleName"`
}

// RoleResponse salida de un rol.
type RoleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
