package oauth

import (
	"context"
	"errors"

	dto "github.com/dropDatabas3/scopegate/internal/http/dto/oauth"
)

// TokenService handles OAuth2 token endpoint logic.
type TokenService interface {
	// ExchangeAuthorizationCode handles grant_type=authorization_code (PKCE)
	ExchangeAuthorizationCode(ctx context.Context, req AuthCodeRequest) (*dto.TokenResponse, error)
}

// AuthCodeRequest contains parameters for authorization_code grant.
type AuthCodeRequest struct {
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
	CodeVerifier string
}

// Token endpoint errors (OAuth2 standard).
var (
	ErrTokenInvalidRequest       = errors.New("invalid_request")
	ErrTokenInvalidClient        = errors.New("invalid_client")
	ErrTokenInvalidGrant         = errors.New("invalid_grant")
	ErrTokenUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrTokenServerError          = errors.New("server_error")
)
