package entity

import "time"

// AuditLog registro inmutable de "quién hizo qué y cuándo". Solo se inserta, nunca se modifica.
type AuditLog struct {
	ID        string
	UserID    *string // nil = acción del sistema, sin actor autenticado
	Action    string
	Timestamp time.Time // UTC
}

// IsSystem indica si la entrada no tiene actor autenticado.
func (a *AuditLog) IsSystem() bool {
	return a.UserID == nil
}
