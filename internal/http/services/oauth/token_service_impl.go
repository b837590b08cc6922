package oauth

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dropDatabas3/scopegate/internal/cache"
	"github.com/dropDatabas3/scopegate/internal/catalog"
	"github.com/dropDatabas3/scopegate/internal/claims"
	dto "github.com/dropDatabas3/scopegate/internal/http/dto/oauth"
	jwtx "github.com/dropDatabas3/scopegate/internal/jwt"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
	"github.com/dropDatabas3/scopegate/internal/security/secret"
	tokens "github.com/dropDatabas3/scopegate/internal/security/token"
	"github.com/dropDatabas3/scopegate/internal/store"
)

// TokenDeps contains dependencies for token service.
type TokenDeps struct {
	DA      store.DataAccess
	Catalog *catalog.Provider
	Issuer  *jwtx.Issuer
	Cache   cache.Cache
}

// tokenService implements TokenService.
type tokenService struct {
	da      store.DataAccess
	catalog *catalog.Provider
	issuer  *jwtx.Issuer
	cache   cache.Cache
}

// NewTokenService creates a new TokenService.
func NewTokenService(d TokenDeps) TokenService {
	return &tokenService{
		da:      d.DA,
		catalog: d.Catalog,
		issuer:  d.Issuer,
		cache:   d.Cache,
	}
}

// ExchangeAuthorizationCode handles grant_type=authorization_code (PKCE).
func (s *tokenService) ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*dto.TokenResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.token.authcode"))

	if req.Code == "" || req.RedirectURI == "" || req.ClientID == "" {
		return nil, ErrTokenInvalidRequest
	}

	client, err := s.catalog.GetClient(ctx, req.ClientID)
	if err != nil {
		log.Warn("client not found", logger.ClientID(req.ClientID), logger.Err(err))
		return nil, ErrTokenInvalidClient
	}

	// Autenticación del client: confidential => secret argon2id,
	// public => PKCE obligatorio.
	switch client.Type {
	case "confidential":
		if !secret.Verify(req.ClientSecret, client.SecretHash) {
			log.Warn("client secret verification failed", logger.ClientID(req.ClientID))
			return nil, ErrTokenInvalidClient
		}
	default:
		if req.CodeVerifier == "" {
			return nil, ErrTokenInvalidRequest
		}
	}

	// Consume authorization code from cache (one-shot).
	key := codeKeyPrefix + tokens.SHA256Base64URL(req.Code)
	data, ok := s.cache.Get(key)
	if !ok {
		log.Warn("authorization code not found")
		return nil, ErrTokenInvalidGrant
	}
	s.cache.Delete(key)

	var ac dto.AuthCodePayload
	if err := json.Unmarshal(data, &ac); err != nil {
		log.Warn("authorization code corrupted", logger.Err(err))
		return nil, ErrTokenInvalidGrant
	}
	if time.Now().After(ac.ExpiresAt) {
		log.Warn("authorization code expired")
		return nil, ErrTokenInvalidGrant
	}
	if ac.ClientID != client.ClientID || ac.RedirectURI != req.RedirectURI {
		log.Warn("client/redirect_uri mismatch")
		return nil, ErrTokenInvalidGrant
	}

	// PKCE S256 cuando el code fue emitido con challenge.
	if ac.CodeChallenge != "" {
		verifierHash := tokens.SHA256Base64URL(req.CodeVerifier)
		if !strings.EqualFold(ac.ChallengeMethod, "S256") || !strings.EqualFold(ac.CodeChallenge, verifierHash) {
			log.Warn("PKCE verification failed")
			return nil, ErrTokenInvalidGrant
		}
	}

	granted := strings.Fields(ac.Scope)
	requested := strings.Fields(ac.RequestedScope)

	// Identidad enriquecida: permisos por rol + claims por scope mapping.
	identity := claims.NewIdentity()
	user, err := s.da.Users().GetByID(ctx, ac.UserID)
	if err != nil {
		log.Warn("user not found at exchange", logger.UserID(ac.UserID), logger.Err(err))
		return nil, ErrTokenInvalidGrant
	}
	roles, err := s.da.RBAC().GetRolesByNames(ctx, user.Roles)
	if err != nil {
		log.Warn("role lookup failed", logger.Err(err))
		roles = nil // sin roles => sin permission claims, no bloquea la emisión
	}
	claims.EnrichPermissions(identity, roles)
	if mappings, err := s.catalog.MappingsForScopes(ctx, requested); err == nil {
		claims.EnrichScopeClaims(identity, user, granted, requested, mappings)
	} else {
		log.Warn("claim mappings unavailable", logger.Err(err))
	}

	// Access token: scopes + permisos bajo el namespace de sistema.
	sysNS := claims.SystemNamespace(s.issuer.Iss)
	accessExtra := map[string]any{
		"scope": ac.Scope,
		"scp":   granted,
	}
	if perms := identity.Values(claims.ClaimTypePermission); len(perms) > 0 {
		accessExtra[sysNS+"/permissions"] = perms
	}
	access, exp, err := s.issuer.IssueAccess(ac.UserID, req.ClientID, accessExtra)
	if err != nil {
		log.Error("failed to issue access token", logger.Err(err))
		return nil, ErrTokenServerError
	}

	// ID token: claims de scope (first-writer-wins ya resuelto en identity).
	idExtra := identity.ToMap()
	delete(idExtra, claims.ClaimTypePermission) // permisos van solo en el access token
	if ac.Nonce != "" {
		idExtra["nonce"] = ac.Nonce
	}
	idToken, _, err := s.issuer.IssueIDToken(ac.UserID, req.ClientID, idExtra)
	if err != nil {
		log.Error("failed to issue id_token", logger.Err(err))
		return nil, ErrTokenServerError
	}

	log.Info("authorization_code exchanged",
		logger.ClientID(req.ClientID),
		logger.Scopes(granted),
	)

	return &dto.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(exp).Seconds()),
		IDToken:     idToken,
		Scope:       ac.Scope,
	}, nil
}
