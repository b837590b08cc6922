// Package audit define el contrato de registro de eventos de política.
//
// La auditoría es observabilidad, no un participante transaccional: una
// falla al registrar un evento jamás debe fallar la operación de
// autorización que lo emitió. Todos los sinks tragan errores.
package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Tipos de evento emitidos por el core de políticas.
const (
	EventClientScopeRestricted = "authorization.client_scope_restricted"
	EventConsentTampering      = "consent.tampering_detected"
	EventConsentGranted        = "consent.granted"
	EventConsentRejected       = "consent.rejected"
	EventConsentRevoked        = "consent.revoked"
)

// Event es un evento de auditoría listo para registrar.
type Event struct {
	Type      string
	SubjectID string         // user o client según el evento; puede ser vacío
	Details   map[string]any // se serializa como JSON blob
	IPAddress string
	UserAgent string
	At        time.Time // cero => el sink estampa time.Now().UTC()
}

// Sink registra eventos fire-and-forget, best-effort.
//
// Los implementadores no deben bloquear el request path: escritura async o
// bounded queue, y cualquier error se traga (contándolo en métricas si aplica).
type Sink interface {
	LogEvent(ctx context.Context, ev Event)
}

// DetailsJSON serializa los detalles del evento. Un fallo de serialización
// degrada a un blob vacío en vez de perder el evento entero.
func (e Event) DetailsJSON() []byte {
	if len(e.Details) == 0 {
		return nil
	}
	b, err := json.Marshal(e.Details)
	if err != nil {
		return nil
	}
	return b
}

// Nop es un Sink que descarta todo. Útil como default defensivo en wiring.
type Nop struct{}

func (Nop) LogEvent(context.Context, Event) {}
