package oauth

import (
	"context"
	"errors"

	"github.com/dropDatabas3/scopegate/internal/catalog"
	dto "github.com/dropDatabas3/scopegate/internal/http/dto/oauth"
	jwtx "github.com/dropDatabas3/scopegate/internal/jwt"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
	"github.com/dropDatabas3/scopegate/internal/security/secret"
)

// Errors
var (
	ErrIntrospectUnauthorized = errors.New("client authentication failed")
)

// IntrospectService handles RFC 7662 token introspection.
type IntrospectService interface {
	// Introspect valida las credenciales del client y reporta el estado del
	// token. Un token inválido o expirado produce {active: false}, no error.
	Introspect(ctx context.Context, clientID, clientSecret, token string) (*dto.IntrospectResponse, error)
}

// IntrospectDeps dependencies.
type IntrospectDeps struct {
	Catalog *catalog.Provider
	Issuer  *jwtx.Issuer
}

type introspectService struct {
	catalog *catalog.Provider
	issuer  *jwtx.Issuer
}

func NewIntrospectService(d IntrospectDeps) IntrospectService {
	return &introspectService{catalog: d.Catalog, issuer: d.Issuer}
}

func (s *introspectService) Introspect(ctx context.Context, clientID, clientSecret, token string) (*dto.IntrospectResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.introspect"))

	if err := s.authenticateClient(ctx, clientID, clientSecret); err != nil {
		return nil, err
	}
	if token == "" {
		return &dto.IntrospectResponse{Active: false}, nil
	}

	parsed, err := s.issuer.Parse(token)
	if err != nil {
		// Token ajeno, expirado o corrupto: inactive, nunca error.
		return &dto.IntrospectResponse{Active: false}, nil
	}

	resp := &dto.IntrospectResponse{Active: true}
	if v, ok := parsed["scope"].(string); ok {
		resp.Scope = v
	}
	if v, ok := parsed["sub"].(string); ok {
		resp.Sub = v
	}
	if v, ok := parsed["aud"].(string); ok {
		resp.ClientID = v
	}
	if v, ok := parsed["iss"].(string); ok {
		resp.Iss = v
	}
	if v, ok := parsed["exp"].(float64); ok {
		resp.Exp = int64(v)
	}
	if v, ok := parsed["iat"].(float64); ok {
		resp.Iat = int64(v)
	}

	log.Debug("token introspected", logger.ClientID(clientID))
	return resp, nil
}

// authenticateClient exige un client confidential con secret válido.
func (s *introspectService) authenticateClient(ctx context.Context, clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return ErrIntrospectUnauthorized
	}
	client, err := s.catalog.GetClient(ctx, clientID)
	if err != nil {
		return ErrIntrospectUnauthorized
	}
	if client.Type != "confidential" || !secret.Verify(clientSecret, client.SecretHash) {
		return ErrIntrospectUnauthorized
	}
	return nil
}
