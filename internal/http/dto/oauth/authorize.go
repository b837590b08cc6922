// Package oauth contiene los DTOs del dominio OAuth2.
package oauth

// AuthorizeRequest is the parsed input for GET /oauth/authorize.
// UserID comes from the authenticated session, never from query params.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
	UserID              string
}

// AuthorizeResult carries the redirect target for the user agent: the client
// callback (code or error) or the consent UI when consent is still needed.
type AuthorizeResult struct {
	RedirectURL string
}
