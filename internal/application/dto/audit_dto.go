package dto

import "time"

// AuditLogResponse entrada de bitácora; UserID nulo para acciones del sistema.
type AuditLogResponse struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditLogListResponse entradas más recientes primero.
type AuditLogListResponse struct {
	Items []AuditLogResponse `json:"items"`
	Total int                `json:"total"`
}
