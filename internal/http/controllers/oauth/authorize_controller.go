// Package oauth contiene los controllers del dominio OAuth2.
package oauth

import (
	"net/http"

	dto "github.com/dropDatabas3/scopegate/internal/http/dto/oauth"
	httperrors "github.com/dropDatabas3/scopegate/internal/http/errors"
	"github.com/dropDatabas3/scopegate/internal/http/services/oauth"
)

// userIDHeader identifica al usuario autenticado. En un despliegue real lo
// setea el gateway de sesión que antecede a este servicio.
const userIDHeader = "X-User-ID"

type AuthorizeController struct {
	service oauth.AuthorizeService
}

func NewAuthorizeController(service oauth.AuthorizeService) *AuthorizeController {
	return &AuthorizeController{service: service}
}

// Authorize starts the authorization code flow.
// GET /oauth/authorize?response_type=code&client_id=...&redirect_uri=...&scope=...
func (c *AuthorizeController) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.AuthorizeRequest{
		ResponseType:        q.Get("response_type"),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		Nonce:               q.Get("nonce"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
		UserID:              r.Header.Get(userIDHeader),
	}
	if req.UserID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("authenticated session required"))
		return
	}

	res, err := c.service.Authorize(r.Context(), req)
	if err != nil {
		switch err {
		case oauth.ErrAuthzInvalidRequest:
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		case oauth.ErrAuthzUnknownClient:
			httperrors.WriteError(w, httperrors.ErrClientNotFound)
		case oauth.ErrAuthzInvalidRedirect:
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}
