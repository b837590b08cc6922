package oauth

import (
	svc "github.com/dropDatabas3/scopegate/internal/http/services/oauth"
)

// Controllers agrupa los controllers del dominio OAuth.
type Controllers struct {
	Authorize  *AuthorizeController
	Consent    *ConsentController
	Token      *TokenController
	Introspect *IntrospectController
	Revoke     *RevokeController
}

// NewControllers crea los controllers a partir de los services.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Authorize:  NewAuthorizeController(s.Authorize),
		Consent:    NewConsentController(s.Consent),
		Token:      NewTokenController(s.Token),
		Introspect: NewIntrospectController(s.Introspect),
		Revoke:     NewRevokeController(s.Revoke),
	}
}
