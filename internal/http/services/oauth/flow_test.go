package oauth

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/scopegate/internal/audit"
	cachemem "github.com/dropDatabas3/scopegate/internal/cache/memory"
	"github.com/dropDatabas3/scopegate/internal/catalog"
	"github.com/dropDatabas3/scopegate/internal/claims"
	"github.com/dropDatabas3/scopegate/internal/domain/repository"
	dto "github.com/dropDatabas3/scopegate/internal/http/dto/oauth"
	jwtx "github.com/dropDatabas3/scopegate/internal/jwt"
	"github.com/dropDatabas3/scopegate/internal/policy"
	"github.com/dropDatabas3/scopegate/internal/security/secret"
	tokens "github.com/dropDatabas3/scopegate/internal/security/token"
	memstore "github.com/dropDatabas3/scopegate/internal/store/memory"
)

const (
	testClientID = "web-app"
	testSecret   = "s3cret-dev"
	testUserID   = "u-1"
	testRedirect = "https://app.example.com/callback"
)

type testEnv struct {
	svcs Services
	da   *memstore.Store
	rec  *audit.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	da := memstore.New()

	for _, in := range []repository.ScopeInput{
		{Name: "openid", DisplayName: "Sign in", Required: true},
		{Name: "profile", DisplayName: "Profile"},
		{Name: "email", DisplayName: "Email"},
	} {
		_, err := da.Scopes().Upsert(ctx, in)
		require.NoError(t, err)
	}
	for _, in := range []repository.ClaimMappingInput{
		{ScopeName: "email", ClaimType: "email", Attribute: "email", DataType: repository.ClaimDataTypeString},
		{ScopeName: "email", ClaimType: "email_verified", Attribute: "email_confirmed", DataType: repository.ClaimDataTypeBoolean},
		{ScopeName: "profile", ClaimType: "name", Attribute: "name", DataType: repository.ClaimDataTypeString},
	} {
		_, err := da.ClaimMappings().Upsert(ctx, in)
		require.NoError(t, err)
	}

	hash, err := secret.Hash(secret.Default, testSecret)
	require.NoError(t, err)
	_, err = da.Clients().Upsert(ctx, repository.ClientInput{
		ClientID:       testClientID,
		Name:           "Web App",
		Type:           "confidential",
		RedirectURIs:   []string{testRedirect},
		AllowedScopes:  []string{"openid", "profile", "email"},
		RequiredScopes: []string{"openid"},
		Secret:         hash,
	})
	require.NoError(t, err)

	da.PutRole(repository.Role{ID: "r1", Name: "admin", Permissions: "users:read,users:write"})
	da.PutUser(repository.User{
		ID:             testUserID,
		Email:          "ana@example.com",
		EmailConfirmed: true,
		Name:           "Ana Demo",
		Roles:          []string{"admin"},
	})

	c := cachemem.New(time.Minute)
	rec := audit.NewRecorder()
	prov := catalog.NewProvider(catalog.Deps{
		Scopes:   da.Scopes(),
		Clients:  da.Clients(),
		Mappings: da.ClaimMappings(),
		Cache:    c,
		TTL:      time.Minute,
	})
	issuer, err := jwtx.NewIssuer("http://localhost:8080")
	require.NoError(t, err)

	svcs := NewServices(Deps{
		DA:               da,
		Catalog:          prov,
		Evaluator:        policy.NewEvaluator(prov, rec),
		Issuer:           issuer,
		Cache:            c,
		Audit:            rec,
		ConsentUIBaseURL: "http://localhost:3000",
	})
	return &testEnv{svcs: svcs, da: da, rec: rec}
}

func (e *testEnv) authorize(t *testing.T, scope string) string {
	t.Helper()
	res, err := e.svcs.Authorize.Authorize(context.Background(), dto.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     testClientID,
		RedirectURI:  testRedirect,
		Scope:        scope,
		State:        "xyz",
		UserID:       testUserID,
	})
	require.NoError(t, err)
	return res.RedirectURL
}

func queryParam(t *testing.T, rawURL, name string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query().Get(name)
}

func TestAuthorize_RedirectsToConsentWithRestrictedSet(t *testing.T) {
	env := newTestEnv(t)

	loc := env.authorize(t, "openid profile admin:root")
	require.Contains(t, loc, "http://localhost:3000/consent")

	token := queryParam(t, loc, "consent_token")
	require.NotEmpty(t, token)

	// El scope fuera del allow-list se recortó y auditó exactamente una vez.
	require.Equal(t, 1, env.rec.CountByType(audit.EventClientScopeRestricted))

	info, err := env.svcs.Consent.GetInfo(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, testClientID, info.ClientID)
	require.Len(t, info.Scopes, 2)
	for _, sc := range info.Scopes {
		if sc.Name == "openid" {
			require.True(t, sc.Required)
		} else {
			require.False(t, sc.Required)
		}
	}
}

func TestConsent_ApproveIssuesCodeAndPersistsConsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token := queryParam(t, env.authorize(t, "openid email"), "consent_token")
	res, err := env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{Token: token, Approve: true})
	require.NoError(t, err)

	code := queryParam(t, res.URL, "code")
	require.NotEmpty(t, code)
	require.Equal(t, "xyz", queryParam(t, res.URL, "state"))

	consent, err := env.da.Consents().Get(ctx, testUserID, testClientID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"openid", "email"}, consent.Scopes)

	require.Equal(t, 1, env.rec.CountByType(audit.EventConsentGranted))

	// El challenge es one-shot.
	_, err = env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{Token: token, Approve: true})
	require.ErrorIs(t, err, ErrConsentNotFound)
}

func TestConsent_PartialGrantRecordsOnlyGranted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token := queryParam(t, env.authorize(t, "openid profile email"), "consent_token")
	res, err := env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{
		Token:         token,
		Approve:       true,
		GrantedScopes: []string{"openid", "email"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, queryParam(t, res.URL, "code"))

	consent, err := env.da.Consents().Get(ctx, testUserID, testClientID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"openid", "email"}, consent.Scopes)

	events := env.rec.Events()
	var granted *audit.Event
	for i := range events {
		if events[i].Type == audit.EventConsentGranted {
			granted = &events[i]
		}
	}
	require.NotNil(t, granted)
	require.Equal(t, true, granted.Details["partial_grant"])
}

func TestConsent_RequiredScopeForcedEvenIfOmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// openid es requerido: si granted lo incluye pero omite los opcionales,
	// el grant efectivo se reduce a los requeridos + lo otorgado.
	token := queryParam(t, env.authorize(t, "openid profile"), "consent_token")
	_, err := env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{
		Token:         token,
		Approve:       true,
		GrantedScopes: []string{"openid"},
	})
	require.NoError(t, err)

	consent, err := env.da.Consents().Get(ctx, testUserID, testClientID)
	require.NoError(t, err)
	require.Equal(t, []string{"openid"}, consent.Scopes)
}

func TestConsent_TamperingIsHardFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token := queryParam(t, env.authorize(t, "openid profile"), "consent_token")
	_, err := env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{
		Token:         token,
		Approve:       true,
		GrantedScopes: []string{"profile"}, // omite el requerido openid
	})
	require.ErrorIs(t, err, ErrConsentTampered)
	require.Equal(t, 1, env.rec.CountByType(audit.EventConsentTampering))

	// Nada se persistió y el challenge quedó consumido.
	_, err = env.da.Consents().Get(ctx, testUserID, testClientID)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{Token: token, Approve: true})
	require.ErrorIs(t, err, ErrConsentNotFound)
}

func TestConsent_RejectRedirectsAccessDenied(t *testing.T) {
	env := newTestEnv(t)

	token := queryParam(t, env.authorize(t, "openid email"), "consent_token")
	res, err := env.svcs.Consent.Accept(context.Background(), dto.ConsentAcceptRequest{Token: token, Approve: false})
	require.NoError(t, err)
	require.Equal(t, "access_denied", queryParam(t, res.URL, "error"))
	require.Equal(t, 1, env.rec.CountByType(audit.EventConsentRejected))
}

func TestAuthorize_PriorConsentSkipsConsentScreen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.da.Consents().Upsert(ctx, testUserID, testClientID, []string{"openid", "email"})
	require.NoError(t, err)

	loc := env.authorize(t, "openid email")
	require.True(t, strings.HasPrefix(loc, testRedirect), "expected direct code redirect, got %s", loc)
	require.NotEmpty(t, queryParam(t, loc, "code"))
}

func TestToken_ExchangeEnrichesClaims(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token := queryParam(t, env.authorize(t, "openid email"), "consent_token")
	res, err := env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{Token: token, Approve: true})
	require.NoError(t, err)
	code := queryParam(t, res.URL, "code")

	tr, err := env.svcs.Token.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code:         code,
		RedirectURI:  testRedirect,
		ClientID:     testClientID,
		ClientSecret: testSecret,
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer", tr.TokenType)
	require.Equal(t, "openid email", tr.Scope)

	// Claims del ID token: email + email_verified normalizado a "true".
	idClaims := parseToken(t, env, tr.IDToken)
	require.Equal(t, "ana@example.com", idClaims["email"])
	require.Equal(t, "true", idClaims["email_verified"])
	_, hasName := idClaims["name"]
	require.False(t, hasName, "profile no fue otorgado")

	// Access token: scopes + permisos namespaced derivados del rol.
	atClaims := parseToken(t, env, tr.AccessToken)
	require.Equal(t, "openid email", atClaims["scope"])
	perms, ok := atClaims[claims.SystemNamespace("http://localhost:8080")+"/permissions"].([]any)
	require.True(t, ok)
	require.ElementsMatch(t, []any{"users:read", "users:write"}, perms)

	// El code es one-shot.
	_, err = env.svcs.Token.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code:         code,
		RedirectURI:  testRedirect,
		ClientID:     testClientID,
		ClientSecret: testSecret,
	})
	require.ErrorIs(t, err, ErrTokenInvalidGrant)
}

func TestToken_PKCEVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	verifier := "une-grande-chaine-aleatoire-de-43-caracteres-xx"
	challenge := tokens.SHA256Base64URL(verifier)

	res, err := env.svcs.Authorize.Authorize(ctx, dto.AuthorizeRequest{
		ResponseType:        "code",
		ClientID:            testClientID,
		RedirectURI:         testRedirect,
		Scope:               "openid",
		UserID:              testUserID,
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
	})
	require.NoError(t, err)
	token := queryParam(t, res.RedirectURL, "consent_token")

	acc, err := env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{Token: token, Approve: true})
	require.NoError(t, err)
	code := queryParam(t, acc.URL, "code")

	// Verifier incorrecto => invalid_grant.
	_, err = env.svcs.Token.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code:         code,
		RedirectURI:  testRedirect,
		ClientID:     testClientID,
		ClientSecret: testSecret,
		CodeVerifier: "wrong",
	})
	require.ErrorIs(t, err, ErrTokenInvalidGrant)
}

func TestIntrospectAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token := queryParam(t, env.authorize(t, "openid email"), "consent_token")
	res, err := env.svcs.Consent.Accept(ctx, dto.ConsentAcceptRequest{Token: token, Approve: true})
	require.NoError(t, err)
	tr, err := env.svcs.Token.ExchangeAuthorizationCode(ctx, AuthCodeRequest{
		Code:         queryParam(t, res.URL, "code"),
		RedirectURI:  testRedirect,
		ClientID:     testClientID,
		ClientSecret: testSecret,
	})
	require.NoError(t, err)

	intr, err := env.svcs.Introspect.Introspect(ctx, testClientID, testSecret, tr.AccessToken)
	require.NoError(t, err)
	require.True(t, intr.Active)
	require.Equal(t, "openid email", intr.Scope)
	require.Equal(t, testUserID, intr.Sub)

	inactive, err := env.svcs.Introspect.Introspect(ctx, testClientID, testSecret, "garbage")
	require.NoError(t, err)
	require.False(t, inactive.Active)

	_, err = env.svcs.Introspect.Introspect(ctx, testClientID, "bad-secret", tr.AccessToken)
	require.ErrorIs(t, err, ErrIntrospectUnauthorized)

	// Revocar fuerza re-consent en el próximo authorize.
	err = env.svcs.Revoke.Revoke(ctx, testClientID, testSecret, testUserID)
	require.NoError(t, err)
	require.Equal(t, 1, env.rec.CountByType(audit.EventConsentRevoked))

	loc := env.authorize(t, "openid email")
	require.Contains(t, loc, "consent_token=")
}

// parseToken valida firma y devuelve los claims usando el issuer del env.
func parseToken(t *testing.T, env *testEnv, raw string) map[string]any {
	t.Helper()
	svc, ok := env.svcs.Token.(*tokenService)
	require.True(t, ok)
	parsed, err := svc.issuer.Parse(raw)
	require.NoError(t, err)
	return parsed
}
