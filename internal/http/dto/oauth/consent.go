package oauth

import "time"

// ConsentChallenge is the one-shot payload cached by the authorize flow and
// consumed by consent accept. RequestedScopes is the post-policy set: scopes
// outside the client allow-list were already trimmed (and audited) before
// the challenge was created.
type ConsentChallenge struct {
	UserID              string    `json:"user_id"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	RequestedScopes     []string  `json:"requested_scopes"`
	State               string    `json:"state"`
	Nonce               string    `json:"nonce"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	ExpiresAt           time.Time `json:"expires_at"`
}

// ConsentAcceptRequest is the input for POST /oauth/consent/accept.
// GrantedScopes lists the scopes the user ticked; nil means "all requested"
// (la UI simple sin checkboxes).
type ConsentAcceptRequest struct {
	Token         string   `json:"consent_token"`
	Approve       bool     `json:"approve"`
	GrantedScopes []string `json:"granted_scopes"`
}

// AuthCodeRedirect contains the result location for the client.
type AuthCodeRedirect struct {
	URL string
}

// ScopeDetail contains friendly scope information for consent screen display.
type ScopeDetail struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Required    bool   `json:"required"`
}

// ConsentInfoResponse contains data needed to render the consent screen.
type ConsentInfoResponse struct {
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name,omitempty"`
	Scopes      []ScopeDetail `json:"scopes"`
	RedirectURI string        `json:"redirect_uri"`
}
