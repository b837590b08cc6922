package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/scopegate/internal/audit"
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
	ErrConsentMissingToken = errors.New("consent_token required")
	ErrConsentNotFound     = errors.New("invalid or expired consent_token")
	ErrConsentTampered     = errors.New("consent submission missing required scopes")
	ErrConsentStoreFailed  = errors.New("failed to store consent")
	ErrConsentCodeFailed   = errors.New("failed to generate auth code")
)

// ConsentService handles consent acceptance logic.
type ConsentService interface {
	// GetInfo retrieves consent challenge info with scope display metadata
	// for the consent screen. Peek only: the challenge survives.
	GetInfo(ctx context.Context, token string) (*dto.ConsentInfoResponse, error)

	// Accept consumes the challenge and processes the user's decision.
	Accept(ctx context.Context, req dto.ConsentAcceptRequest) (*dto.AuthCodeRedirect, error)
}

// ConsentDeps dependencies.
type ConsentDeps struct {
	DA        store.DataAccess
	Catalog   *catalog.Provider
	Evaluator *policy.Evaluator
	Cache     cache.Cache
	Audit     audit.Sink
}

type consentService struct {
	da        store.DataAccess
	catalog   *catalog.Provider
	evaluator *policy.Evaluator
	cache     cache.Cache
	sink      audit.Sink
}

func NewConsentService(d ConsentDeps) ConsentService {
	return &consentService{
		da:        d.DA,
		catalog:   d.Catalog,
		evaluator: d.Evaluator,
		cache:     d.Cache,
		sink:      d.Audit,
	}
}

// GetInfo arma los datos de la consent screen: scopes con display metadata
// y flag required (global OR requerido por el client).
func (s *consentService) GetInfo(ctx context.Context, token string) (*dto.ConsentInfoResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.consent.getInfo"))

	payload, _, err := s.peekChallenge(ctx, token)
	if err != nil {
		return nil, err
	}

	clientPolicy, err := s.catalog.ResolveClientPolicy(ctx, payload.ClientID)
	if err != nil || clientPolicy == nil {
		log.Warn("client vanished while consent pending", logger.ClientID(payload.ClientID))
		return nil, ErrConsentNotFound
	}
	allScopes, err := s.catalog.ListScopes(ctx)
	if err != nil {
		log.Error("failed to list scopes", logger.Err(err))
		return nil, ErrConsentNotFound
	}
	reqs := policy.BuildRequirements(allScopes, clientPolicy)

	scopeDetails := make([]dto.ScopeDetail, 0, len(payload.RequestedScopes))
	for _, name := range payload.RequestedScopes {
		detail := dto.ScopeDetail{
			Name:        name,
			DisplayName: name,
			Required:    reqs.IsRequired(name),
		}
		if sc, err := s.catalog.GetScope(ctx, name); err == nil && sc != nil {
			if sc.DisplayName != "" {
				detail.DisplayName = sc.DisplayName
			}
			detail.Description = sc.Description
			detail.Category = sc.Category
		}
		scopeDetails = append(scopeDetails, detail)
	}

	var clientName string
	if c, err := s.catalog.GetClient(ctx, payload.ClientID); err == nil {
		clientName = c.Name
	}

	return &dto.ConsentInfoResponse{
		ClientID:    payload.ClientID,
		ClientName:  clientName,
		Scopes:      scopeDetails,
		RedirectURI: payload.RedirectURI,
	}, nil
}

// Accept processes the user's decision on the consent screen.
func (s *consentService) Accept(ctx context.Context, req dto.ConsentAcceptRequest) (*dto.AuthCodeRedirect, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.consent.accept"))

	payload, key, err := s.peekChallenge(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	// One-shot: el challenge se consume gane o pierda.
	s.cache.Delete(key)

	// Rechazo => access_denied al client, con auditoría.
	if !req.Approve {
		s.sink.LogEvent(ctx, audit.Event{
			Type:      audit.EventConsentRejected,
			SubjectID: payload.UserID,
			Details: map[string]any{
				"client_id": payload.ClientID,
				"requested": payload.RequestedScopes,
			},
		})
		loc := buildRedirect(payload.RedirectURI, map[string]string{
			"error": "access_denied",
			"state": payload.State,
		})
		return &dto.AuthCodeRedirect{URL: loc}, nil
	}

	clientPolicy, err := s.catalog.ResolveClientPolicy(ctx, payload.ClientID)
	if err != nil || clientPolicy == nil {
		log.Warn("client vanished while consent pending", logger.ClientID(payload.ClientID))
		return nil, ErrConsentNotFound
	}
	allScopes, err := s.catalog.ListScopes(ctx)
	if err != nil {
		log.Error("failed to list scopes", logger.Err(err))
		return nil, ErrConsentStoreFailed
	}
	reqs := policy.BuildRequirements(allScopes, clientPolicy)

	// Sin checkboxes granulares la UI aprueba el set completo.
	granted := req.GrantedScopes
	if granted == nil {
		granted = payload.RequestedScopes
	}

	// Tamper check ANTES de clasificar: un requerido ausente del grant es
	// una submission manipulada, no un partial grant válido.
	var required []string
	for _, sc := range payload.RequestedScopes {
		if reqs.IsRequired(sc) {
			required = append(required, sc)
		}
	}
	if err := policy.VerifyGrantIntegrity(required, granted); err != nil {
		var tErr *policy.TamperError
		if errors.As(err, &tErr) {
			log.Warn("consent tampering detected",
				logger.ClientID(payload.ClientID),
				logger.UserID(payload.UserID),
				logger.Scopes(tErr.Missing),
			)
			s.sink.LogEvent(ctx, audit.Event{
				Type:      audit.EventConsentTampering,
				SubjectID: payload.UserID,
				Details: map[string]any{
					"client_id": payload.ClientID,
					"missing":   tErr.Missing,
				},
			})
		}
		return nil, ErrConsentTampered
	}

	dec := policy.Classify(payload.RequestedScopes, reqs, granted)

	// Re-validar contra el allow-list por si la política cambió entre el
	// authorize y el accept. Sin re-auditar: el recorte original ya emitió
	// su evento.
	effective := s.evaluator.EvaluateWithOptions(ctx, payload.ClientID, dec.Allowed,
		policy.EvaluateOptions{SuppressAudit: true}).Allowed
	if len(effective) == 0 {
		loc := buildRedirect(payload.RedirectURI, map[string]string{
			"error": "invalid_scope",
			"state": payload.State,
		})
		return &dto.AuthCodeRedirect{URL: loc}, nil
	}

	if _, err := s.da.Consents().Upsert(ctx, payload.UserID, payload.ClientID, effective); err != nil {
		log.Error("failed to upsert consent", logger.Err(err))
		return nil, ErrConsentStoreFailed
	}

	s.sink.LogEvent(ctx, audit.Event{
		Type:      audit.EventConsentGranted,
		SubjectID: payload.UserID,
		Details: map[string]any{
			"client_id":     payload.ClientID,
			"allowed":       effective,
			"rejected":      dec.Rejected,
			"partial_grant": dec.PartialGrant,
		},
	})

	code, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		log.Error("failed to generate code", logger.Err(err))
		return nil, ErrConsentCodeFailed
	}
	authPayload := dto.AuthCodePayload{
		UserID:          payload.UserID,
		ClientID:        payload.ClientID,
		RedirectURI:     payload.RedirectURI,
		Scope:           strings.Join(effective, " "),
		RequestedScope:  strings.Join(payload.RequestedScopes, " "),
		Nonce:           payload.Nonce,
		CodeChallenge:   payload.CodeChallenge,
		ChallengeMethod: payload.CodeChallengeMethod,
		ExpiresAt:       timeNow().Add(authCodeTTL),
	}
	authBytes, _ := json.Marshal(authPayload)

	// Se guarda el hash del code, nunca el code plano.
	s.cache.Set(codeKeyPrefix+tokens.SHA256Base64URL(code), authBytes, authCodeTTL)

	loc := buildRedirect(payload.RedirectURI, map[string]string{
		"code":  code,
		"state": payload.State,
	})
	return &dto.AuthCodeRedirect{URL: loc}, nil
}

// peekChallenge lee y valida el challenge sin consumirlo.
func (s *consentService) peekChallenge(ctx context.Context, token string) (*dto.ConsentChallenge, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "", ErrConsentMissingToken
	}
	key := consentKeyPrefix + token
	raw, ok := s.cache.Get(key)
	if !ok {
		return nil, "", ErrConsentNotFound
	}
	var payload dto.ConsentChallenge
	if err := json.Unmarshal(raw, &payload); err != nil {
		logger.From(ctx).Warn("consent payload corrupted", logger.Err(err))
		return nil, "", ErrConsentNotFound
	}
	if time.Now().After(payload.ExpiresAt) {
		return nil, "", ErrConsentNotFound
	}
	return &payload, key, nil
}
