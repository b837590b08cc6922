package oauth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/scopegate/internal/audit"
	"github.com/dropDatabas3/scopegate/internal/catalog"
	"github.com/dropDatabas3/scopegate/internal/domain/repository"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
	"github.com/dropDatabas3/scopegate/internal/security/secret"
	"github.com/dropDatabas3/scopegate/internal/store"
)

// Errors
var (
	ErrRevokeUnauthorized = errors.New("client authentication failed")
	ErrRevokeInvalidInput = errors.New("user_id required")
)

// RevokeService revoca el consent de un usuario para el client autenticado.
// El próximo authorize de ese par user/client vuelve a pasar por la consent
// screen.
type RevokeService interface {
	Revoke(ctx context.Context, clientID, clientSecret, userID string) error
}

// RevokeDeps dependencies.
type RevokeDeps struct {
	DA      store.DataAccess
	Catalog *catalog.Provider
	Audit   audit.Sink
}

type revokeService struct {
	da      store.DataAccess
	catalog *catalog.Provider
	sink    audit.Sink
}

func NewRevokeService(d RevokeDeps) RevokeService {
	return &revokeService{da: d.DA, catalog: d.Catalog, sink: d.Audit}
}

func (s *revokeService) Revoke(ctx context.Context, clientID, clientSecret, userID string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.revoke"))

	if clientID == "" || clientSecret == "" {
		return ErrRevokeUnauthorized
	}
	client, err := s.catalog.GetClient(ctx, clientID)
	if err != nil {
		return ErrRevokeUnauthorized
	}
	if client.Type != "confidential" || !secret.Verify(clientSecret, client.SecretHash) {
		return ErrRevokeUnauthorized
	}
	if userID == "" {
		return ErrRevokeInvalidInput
	}

	err = s.da.Consents().Revoke(ctx, userID, clientID)
	switch {
	case err == nil:
		s.sink.LogEvent(ctx, audit.Event{
			Type:      audit.EventConsentRevoked,
			SubjectID: userID,
			Details:   map[string]any{"client_id": clientID},
		})
		log.Info("consent revoked", logger.ClientID(clientID), logger.UserID(userID))
		return nil
	case repository.IsNotFound(err):
		// RFC 7009 style: revocar lo inexistente es un éxito silencioso.
		return nil
	default:
		log.Error("failed to revoke consent", logger.Err(err))
		return err
	}
}
