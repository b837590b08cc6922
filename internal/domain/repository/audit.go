package repository

import (
	"context"
	"time"
)

// AuditEvent es el registro inmutable de una ocurrencia relevante de política.
// Append-only: este subsistema nunca lo muta ni lo borra.
type AuditEvent struct {
	ID        string
	Type      string
	SubjectID string
	Details   []byte // JSON blob
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// AuditRepository persiste eventos de auditoría.
type AuditRepository interface {
	// Insert agrega un evento. El caller no depende del resultado:
	// el sink de auditoría traga errores (best-effort).
	Insert(ctx context.Context, ev AuditEvent) error
}
