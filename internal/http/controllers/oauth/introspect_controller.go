package oauth

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/scopegate/internal/http/errors"
	"github.com/dropDatabas3/scopegate/internal/http/services/oauth"
)

type IntrospectController struct {
	service oauth.IntrospectService
}

func NewIntrospectController(service oauth.IntrospectService) *IntrospectController {
	return &IntrospectController{service: service}
}

// Introspect handles RFC 7662 token introspection.
// POST /oauth/introspect (Basic auth, form body: token)
func (c *IntrospectController) Introspect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithCause(err))
		return
	}
	clientID, clientSecret := clientCredentials(r)

	res, err := c.service.Introspect(r.Context(), clientID, clientSecret, r.PostFormValue("token"))
	if err != nil {
		switch err {
		case oauth.ErrIntrospectUnauthorized:
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth"`)
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		default:
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(res)
}
