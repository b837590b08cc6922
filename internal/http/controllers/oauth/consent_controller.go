package oauth

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/scopegate/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/scopegate/internal/http/errors"
	"github.com/dropDatabas3/scopegate/internal/http/services/oauth"
)

type ConsentController struct {
	service oauth.ConsentService
}

func NewConsentController(service oauth.ConsentService) *ConsentController {
	return &ConsentController{service: service}
}

// GetInfo retrieves consent info with scope display metadata for the consent screen.
// GET /oauth/consent/info?consent_token=xxx
func (c *ConsentController) GetInfo(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("consent_token")
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("consent_token required"))
		return
	}

	res, err := c.service.GetInfo(r.Context(), token)
	if err != nil {
		switch err {
		case oauth.ErrConsentMissingToken, oauth.ErrConsentNotFound:
			httperrors.WriteError(w, httperrors.ErrChallengeNotFound.WithDetail(err.Error()))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(res)
}

// Accept handles the consent decision (approve/reject).
// POST /oauth/consent/accept
func (c *ConsentController) Accept(w http.ResponseWriter, r *http.Request) {
	var req dto.ConsentAcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithCause(err))
		return
	}

	res, err := c.service.Accept(r.Context(), req)
	if err != nil {
		switch err {
		case oauth.ErrConsentMissingToken, oauth.ErrConsentNotFound:
			httperrors.WriteError(w, httperrors.ErrChallengeNotFound.WithDetail(err.Error()))
		case oauth.ErrConsentTampered:
			// Fallo duro: sin redirect al client, la submission fue manipulada.
			httperrors.WriteError(w, httperrors.ErrConsentTampering)
		case oauth.ErrConsentStoreFailed, oauth.ErrConsentCodeFailed:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithDetail(err.Error()))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	http.Redirect(w, r, res.URL, http.StatusFound)
}
