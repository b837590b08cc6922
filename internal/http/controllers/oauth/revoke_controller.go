package oauth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/scopegate/internal/http/errors"
	"github.com/dropDatabas3/scopegate/internal/http/services/oauth"
)

type RevokeController struct {
	service oauth.RevokeService
}

func NewRevokeController(service oauth.RevokeService) *RevokeController {
	return &RevokeController{service: service}
}

// Revoke revokes the authenticated client's consent for a user.
// POST /oauth/revoke (Basic auth, form body: user_id)
func (c *RevokeController) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithCause(err))
		return
	}
	clientID, clientSecret := clientCredentials(r)

	err := c.service.Revoke(r.Context(), clientID, clientSecret, r.PostFormValue("user_id"))
	if err != nil {
		switch err {
		case oauth.ErrRevokeUnauthorized:
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth"`)
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		case oauth.ErrRevokeInvalidInput:
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("user_id required"))
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
