package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/authlog-api/internal/domain"
	"github.com/jhoicas/authlog-api/internal/domain/entity"
)

const maxNameLength = 256

// Recursos usados en los mensajes de NotFound.
const (
	resourceUser = "el usuario"
	resourceRole = "el rol"
)

// checkID un id que no es UUID no puede existir: se reporta como NotFound sin tocar el store.
func checkID(resource, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NewNotFoundError(resource, id)
	}
	return nil
}

// validateName exige un nombre no vacío y acotado; devuelve los mensajes incumplidos.
func validateName(field, name string) []string {
	name = strings.TrimSpace(name)
	var msgs []string
	if name == "" {
		msgs = append(msgs, fmt.Sprintf("%s es obligatorio", field))
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		msgs = append(msgs, fmt.Sprintf("%s no puede superar %d caracteres", field, maxNameLength))
	}
	return msgs
}

func roleExists(name string) error {
	return domain.NewValidationError(fmt.Sprintf("el rol '%s' ya existe", name))
}

// isAdminRole el rol que habilita las rutas de administración.
func isAdminRole(r *entity.Role) bool {
	return entity.NormalizeName(r.Name) == entity.NormalizeName(entity.RoleAdmin)
}

func adminRoleLocked(name string) error {
	return domain.NewValidationError(fmt.Sprintf("el rol '%s' es del sistema y no puede renombrarse ni eliminarse", name))
}

func roleMissing(name string) error {
	return domain.NewValidationError(fmt.Sprintf("el rol '%s' no existe", name))
}

func userNameTaken(name string) error {
	return domain.NewValidationError(fmt.Sprintf("el nombre de usuario '%s' ya está en uso", name))
}
