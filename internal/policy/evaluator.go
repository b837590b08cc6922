package policy

import (
	"context"

	"github.com/dropDatabas3/scopegate/internal/audit"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
)

// ClientPolicy es la vista mínima de un client que necesita el evaluador:
// su allow-list y su set de scopes requeridos.
type ClientPolicy struct {
	ClientID       string
	AllowedScopes  []string
	RequiredScopes []string
}

// ClientResolver resuelve la política de un client por su client_id.
// Retorna (nil, nil) si el client no existe: el evaluador falla cerrado
// (todo disallowed) y el caller es responsable de rechazar el request.
type ClientResolver interface {
	ResolveClientPolicy(ctx context.Context, clientID string) (*ClientPolicy, error)
}

// Decision es el resultado de evaluar los scopes pedidos contra el client.
// Allowed ∪ Disallowed == normalize(requested), disjuntos.
type Decision struct {
	Allowed    []string
	Disallowed []string
}

// EvaluateOptions controla efectos secundarios de la evaluación.
type EvaluateOptions struct {
	// SuppressAudit evita emitir el evento de restricción de scopes.
	// Se usa en la re-validación de un request ya auditado (consent accept)
	// para no duplicar el evento.
	SuppressAudit bool
}

// Evaluator decide qué scopes pedidos están permitidos para un client.
type Evaluator struct {
	clients ClientResolver
	sink    audit.Sink
}

func NewEvaluator(clients ClientResolver, sink audit.Sink) *Evaluator {
	if sink == nil {
		sink = audit.Nop{}
	}
	return &Evaluator{clients: clients, sink: sink}
}

// Evaluate computa allowed = requested ∩ allow-list, disallowed = resto.
// Client desconocido o resolución fallida => todo disallowed (fail closed),
// sin error: el rechazo del client es responsabilidad del caller.
func (e *Evaluator) Evaluate(ctx context.Context, clientID string, requested []string) Decision {
	return e.EvaluateWithOptions(ctx, clientID, requested, EvaluateOptions{})
}

// EvaluateWithOptions es Evaluate con control de auditoría.
func (e *Evaluator) EvaluateWithOptions(ctx context.Context, clientID string, requested []string, opts EvaluateOptions) Decision {
	req := NormalizeScopes(requested)

	client, err := e.clients.ResolveClientPolicy(ctx, clientID)
	if err != nil || client == nil {
		if err != nil {
			logger.From(ctx).Named("policy").Warn("client resolution failed, failing closed",
				logger.ClientID(clientID), logger.Err(err))
		}
		dec := Decision{Allowed: []string{}, Disallowed: req}
		e.auditRestricted(ctx, clientID, dec, opts)
		return dec
	}

	allowList := newScopeSet(client.AllowedScopes)
	dec := Decision{Allowed: make([]string, 0, len(req)), Disallowed: []string{}}
	for _, s := range req {
		if allowList.has(s) {
			dec.Allowed = append(dec.Allowed, s)
		} else {
			dec.Disallowed = append(dec.Disallowed, s)
		}
	}

	e.auditRestricted(ctx, clientID, dec, opts)
	return dec
}

// auditRestricted emite exactamente un evento cuando hubo scopes recortados.
func (e *Evaluator) auditRestricted(ctx context.Context, clientID string, dec Decision, opts EvaluateOptions) {
	if opts.SuppressAudit || len(dec.Disallowed) == 0 {
		return
	}
	e.sink.LogEvent(ctx, audit.Event{
		Type:      audit.EventClientScopeRestricted,
		SubjectID: clientID,
		Details: map[string]any{
			"client_id":  clientID,
			"allowed":    dec.Allowed,
			"disallowed": dec.Disallowed,
		},
	})
}
