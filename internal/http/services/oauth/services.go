// Package oauth contiene los services del dominio OAuth2/OIDC.
package oauth

import (
	"time"

	"github.com/dropDatabas3/scopegate/internal/audit"
	"github.com/dropDatabas3/scopegate/internal/cache"
	"github.com/dropDatabas3/scopegate/internal/catalog"
	jwtx "github.com/dropDatabas3/scopegate/internal/jwt"
	"github.com/dropDatabas3/scopegate/internal/policy"
	"github.com/dropDatabas3/scopegate/internal/store"
)

// TTLs de los artefactos efímeros del flujo de autorización.
const (
	consentChallengeTTL = 5 * time.Minute
	authCodeTTL         = 10 * time.Minute
)

// Prefijos de keys en cache para artefactos one-shot.
const (
	consentKeyPrefix = "consent:token:"
	codeKeyPrefix    = "code:"
)

// timeNow se reemplaza en tests para congelar el reloj.
var timeNow = func() time.Time { return time.Now().UTC() }

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	DA               store.DataAccess
	Catalog          *catalog.Provider
	Evaluator        *policy.Evaluator
	Issuer           *jwtx.Issuer
	Cache            cache.Cache
	Audit            audit.Sink
	ConsentUIBaseURL string
}

// Services agrupa todos los services del dominio OAuth.
type Services struct {
	Authorize  AuthorizeService
	Consent    ConsentService
	Token      TokenService
	Introspect IntrospectService
	Revoke     RevokeService
}

// NewServices crea el agregador de services OAuth.
func NewServices(d Deps) Services {
	sink := d.Audit
	if sink == nil {
		sink = audit.Nop{}
	}
	return Services{
		Authorize: NewAuthorizeService(AuthorizeDeps{
			DA:               d.DA,
			Catalog:          d.Catalog,
			Evaluator:        d.Evaluator,
			Cache:            d.Cache,
			ConsentUIBaseURL: d.ConsentUIBaseURL,
		}),
		Consent: NewConsentService(ConsentDeps{
			DA:        d.DA,
			Catalog:   d.Catalog,
			Evaluator: d.Evaluator,
			Cache:     d.Cache,
			Audit:     sink,
		}),
		Token: NewTokenService(TokenDeps{
			DA:      d.DA,
			Catalog: d.Catalog,
			Issuer:  d.Issuer,
			Cache:   d.Cache,
		}),
		Introspect: NewIntrospectService(IntrospectDeps{
			Catalog: d.Catalog,
			Issuer:  d.Issuer,
		}),
		Revoke: NewRevokeService(RevokeDeps{
			DA:      d.DA,
			Catalog: d.Catalog,
			Audit:   sink,
		}),
	}
}
