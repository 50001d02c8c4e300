package entity

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RoleAdmin rol requerido para las operaciones de administración.
const RoleAdmin = "Admin"

// Role rol asignable a usuarios (relación muchos a muchos).
type Role struct {
	ID             string
	Name           string
	NormalizedName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Rename cambia el nombre y su forma normalizada.
func (r *Role) Rename(name string) {
	r.Name = name
	r.NormalizedName = NormalizeName(name)
}

// NormalizeName forma canónica usada para la unicidad sin distinguir mayúsculas.
// Un Caser no es seguro entre goroutines, por eso se crea en cada llamada.
func NormalizeName(name string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}
