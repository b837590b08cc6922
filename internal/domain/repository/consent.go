package repository

import (
	"context"
	"time"
)

// Consent representa el consentimiento de un usuario a un client.
type Consent struct {
	ID        string
	UserID    string
	ClientID  string
	Scopes    []string
	GrantedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// ConsentRepository define operaciones sobre user consents.
type ConsentRepository interface {
	// Upsert crea o actualiza un consent, reemplazando los scopes otorgados.
	Upsert(ctx context.Context, userID, clientID string, scopes []string) (*Consent, error)

	// Get obtiene el consent activo de un usuario para un client.
	// Retorna ErrNotFound si no existe o fue revocado.
	Get(ctx context.Context, userID, clientID string) (*Consent, error)

	// Revoke revoca un consent (soft delete con timestamp).
	Revoke(ctx context.Context, userID, clientID string) error
}

// Covers indica si el consent ya otorgó todos los scopes pedidos
// (comparación case-insensitive). Un consent que cubre el set permite
// saltar la consent screen.
func (c *Consent) Covers(scopes []string) bool {
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[normalize(s)] = struct{}{}
	}
	for _, s := range scopes {
		if _, ok := granted[normalize(s)]; !ok {
			return false
		}
	}
	return true
}
