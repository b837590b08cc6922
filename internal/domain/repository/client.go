package repository

import (
	"context"
)

const (
	ClientTypePublic       = "public"
	ClientTypeConfidential = "confidential"
)

// Client representa un cliente OAuth con sus restricciones de scopes.
//
// AllowedScopes es un allow-list estricto: un scope fuera de la lista nunca
// se otorga a este client, sin importar el consentimiento del usuario.
// RequiredScopes agrega obligatoriedad por-client; se OR-ea con el flag
// Required global del scope (semántica unidireccional: un client puede
// agregar requeridos, nunca volver opcional un requerido global).
type Client struct {
	ID             string
	ClientID       string // identificador público
	Name           string
	Type           string // "public" | "confidential"
	RedirectURIs   []string
	AllowedScopes  []string
	RequiredScopes []string
	SecretHash     string // PHC argon2id; vacío para clients públicos
}

// ClientInput contiene los datos para crear/actualizar un client.
type ClientInput struct {
	ClientID       string
	Name           string
	Type           string
	RedirectURIs   []string
	AllowedScopes  []string
	RequiredScopes []string
	// Secret es el hash PHC argon2id ya calculado (secret.Hash); los drivers
	// lo persisten tal cual. Vacío en un update conserva el hash existente.
	Secret string
}

// ClientRepository define operaciones sobre OAuth clients.
type ClientRepository interface {
	// Get obtiene un client por su client_id público.
	// Retorna ErrNotFound si no existe.
	Get(ctx context.Context, clientID string) (*Client, error)

	// Upsert crea o actualiza un client.
	Upsert(ctx context.Context, input ClientInput) (*Client, error)
}

// IsRedirectURIAllowed verifica que la URI esté registrada (match exacto).
func (c *Client) IsRedirectURIAllowed(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}
