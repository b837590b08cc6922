package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/dropDatabas3/scopegate/internal/cache"
	"github.com/dropDatabas3/scopegate/internal/catalog"
	dto "github.com/dropDatabas3/scopegate/internal/http/dto/oauth"
	"github.com/dropDatabas3/scopegate/internal/observability/logger"
	"github.com/dropDatabas3/scopegate/internal/policy"
	tokens "github.com/dropDatabas3/scopegate/internal/security/token"
	"github.com/dropDatabas3/scopegate/internal/store"
)

// Errors
var (
	ErrAuthzInvalidRequest  = errors.New("invalid authorization request")
	ErrAuthzUnknownClient   = errors.New("unknown client")
	ErrAuthzInvalidRedirect = errors.New("redirect_uri not registered")
	ErrAuthzServerError     = errors.New("authorization failed")
)

// AuthorizeService handles the authorization endpoint logic.
type AuthorizeService interface {
	Authorize(ctx context.Context, req dto.AuthorizeRequest) (*dto.AuthorizeResult, error)
}

// AuthorizeDeps dependencies.
type AuthorizeDeps struct {
	DA               store.DataAccess
	Catalog          *catalog.Provider
	Evaluator        *policy.Evaluator
	Cache            cache.Cache
	ConsentUIBaseURL string
}

type authorizeService struct {
	da        store.DataAccess
	catalog   *catalog.Provider
	evaluator *policy.Evaluator
	cache     cache.Cache
	consentUI string
}

func NewAuthorizeService(d AuthorizeDeps) AuthorizeService {
	return &authorizeService{
		da:        d.DA,
		catalog:   d.Catalog,
		evaluator: d.Evaluator,
		cache:     d.Cache,
		consentUI: d.ConsentUIBaseURL,
	}
}

// Authorize valida el request, recorta los scopes contra la política del
// client y decide el próximo paso: code directo (consent previo cubre el
// set) o redirect a la consent UI con un challenge one-shot.
func (s *authorizeService) Authorize(ctx context.Context, req dto.AuthorizeRequest) (*dto.AuthorizeResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize"))

	// 1. Validación estructural. Errores acá NO redirigen al client:
	// la redirect_uri todavía no está validada (open redirect).
	if req.ResponseType != "code" || req.ClientID == "" || req.RedirectURI == "" || req.UserID == "" {
		return nil, ErrAuthzInvalidRequest
	}
	if req.CodeChallenge != "" && !strings.EqualFold(req.CodeChallengeMethod, "S256") {
		return nil, ErrAuthzInvalidRequest
	}

	// 2. Resolver client y validar redirect_uri (match exacto).
	client, err := s.catalog.GetClient(ctx, req.ClientID)
	if err != nil {
		log.Warn("client not found", logger.ClientID(req.ClientID), logger.Err(err))
		return nil, ErrAuthzUnknownClient
	}
	if !client.IsRedirectURIAllowed(req.RedirectURI) {
		log.Warn("redirect_uri not registered", logger.ClientID(req.ClientID))
		return nil, ErrAuthzInvalidRedirect
	}
	// PKCE obligatorio para clients públicos.
	if client.Type == "public" && req.CodeChallenge == "" {
		return nil, ErrAuthzInvalidRequest
	}

	// 3. Recorte por política: allowed = requested ∩ allow-list.
	// Un recorte parcial sigue adelante con el set reducido (ya auditado
	// por el evaluador); un set vacío no tiene nada que autorizar.
	requested := policy.NormalizeScopes(strings.Fields(req.Scope))
	if len(requested) == 0 {
		return nil, ErrAuthzInvalidRequest
	}
	dec := s.evaluator.Evaluate(ctx, req.ClientID, requested)
	if len(dec.Allowed) == 0 {
		loc := buildRedirect(req.RedirectURI, map[string]string{
			"error": "invalid_scope",
			"state": req.State,
		})
		return &dto.AuthorizeResult{RedirectURL: loc}, nil
	}
	if len(dec.Disallowed) > 0 {
		log.Info("scope set restricted by client policy",
			logger.ClientID(req.ClientID),
			logger.Scopes(dec.Disallowed),
		)
	}

	// 4. Consent previo que cubre el set permitido => code directo.
	if prior, err := s.da.Consents().Get(ctx, req.UserID, req.ClientID); err == nil && prior.Covers(dec.Allowed) {
		return s.issueCodeRedirect(ctx, req, dec.Allowed)
	}

	// 5. Challenge one-shot y redirect a la consent UI.
	token, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("failed to generate consent token", logger.Err(err))
		return nil, ErrAuthzServerError
	}
	challenge := dto.ConsentChallenge{
		UserID:              req.UserID,
		ClientID:            req.ClientID,
		RedirectURI:         req.RedirectURI,
		RequestedScopes:     dec.Allowed,
		State:               req.State,
		Nonce:               req.Nonce,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		ExpiresAt:           timeNow().Add(consentChallengeTTL),
	}
	raw, _ := json.Marshal(challenge)
	s.cache.Set(consentKeyPrefix+token, raw, consentChallengeTTL)

	loc := buildRedirect(s.consentUI+"/consent", map[string]string{
		"consent_token": token,
	})
	return &dto.AuthorizeResult{RedirectURL: loc}, nil
}

// issueCodeRedirect emite un authorization code sin pasar por la consent
// screen (consent previo vigente).
func (s *authorizeService) issueCodeRedirect(ctx context.Context, req dto.AuthorizeRequest, scopes []string) (*dto.AuthorizeResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.authorize.skipConsent"))

	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("failed to generate code", logger.Err(err))
		return nil, ErrAuthzServerError
	}
	payload := dto.AuthCodePayload{
		UserID:          req.UserID,
		ClientID:        req.ClientID,
		RedirectURI:     req.RedirectURI,
		Scope:           strings.Join(scopes, " "),
		RequestedScope:  strings.Join(scopes, " "),
		Nonce:           req.Nonce,
		CodeChallenge:   req.CodeChallenge,
		ChallengeMethod: req.CodeChallengeMethod,
		ExpiresAt:       timeNow().Add(authCodeTTL),
	}
	raw, _ := json.Marshal(payload)

	// Se guarda el hash del code, nunca el code plano.
	s.cache.Set(codeKeyPrefix+tokens.SHA256Base64URL(code), raw, authCodeTTL)

	loc := buildRedirect(req.RedirectURI, map[string]string{
		"code":  code,
		"state": req.State,
	})
	return &dto.AuthorizeResult{RedirectURL: loc}, nil
}

// buildRedirect constructs the URL safely.
func buildRedirect(base string, params map[string]string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base // fallback
	}
	q := u.Query()
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
