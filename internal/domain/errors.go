package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrValidation          = errors.New("validación fallida")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrConcurrencyConflict = errors.New("el registro fue modificado o eliminado por otra operación")
	ErrPersistence         = errors.New("la operación falló")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
)

// ValidationError rechazo corregible por el cliente, con la lista de mensajes a devolver.
type ValidationError struct {
	Messages []string
}

// NewValidationError construye el error con uno o más mensajes.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Messages, "; ")
}

// Is permite errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError identificador de usuario o rol que no resuelve.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError construye el error para el recurso indicado.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no se encontró %s con ID %s", e.Resource, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError fallo de infraestructura (lectura, escritura o commit).
type PersistenceError struct {
	Op    string
	Cause error
}

// Persistence envuelve err como fallo de persistencia. Devuelve nil si err es nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Cause: err}
}

func (e *PersistenceError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", ErrPersistence.Error(), e.Cause)
	}
	return fmt.Sprintf("%s (%s): %v", ErrPersistence.Error(), e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// Is permite errors.Is(err, ErrPersistence).
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IsValidationClass indica si err es un rechazo atribuible al cliente
// (validación, conflicto de nombre o recurso inexistente).
func IsValidationClass(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}
