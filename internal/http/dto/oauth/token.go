package oauth

import "time"

// TokenResponse is the standard OAuth2 token response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IDToken     string `json:"id_token,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// AuthCodePayload is the cached authorization code data.
// Scope is the effective grant; RequestedScope preserves the post-policy
// requested set (needed for always-include claim mappings at token time).
type AuthCodePayload struct {
	UserID          string    `json:"user_id"`
	ClientID        string    `json:"client_id"`
	RedirectURI     string    `json:"redirect_uri"`
	Scope           string    `json:"scope"`
	RequestedScope  string    `json:"requested_scope"`
	Nonce           string    `json:"nonce,omitempty"`
	CodeChallenge   string    `json:"code_challenge"`
	ChallengeMethod string    `json:"challenge_method"` // "S256"
	ExpiresAt       time.Time `json:"expires_at"`
}

// IntrospectResponse is the RFC 7662 introspection response.
type IntrospectResponse struct {
	Active   bool   `json:"active"`
	Scope    string `json:"scope,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Sub      string `json:"sub,omitempty"`
	Exp      int64  `json:"exp,omitempty"`
	Iat      int64  `json:"iat,omitempty"`
	Iss      string `json:"iss,omitempty"`
}
