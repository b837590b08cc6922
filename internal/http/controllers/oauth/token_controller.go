package oauth

import (
	"encoding/json"
	"net/http"

	httperrors "github.com/dropDatabas3/scopegate/internal/http/errors"
	"github.com/dropDatabas3/scopegate/internal/http/services/oauth"
)

type TokenController struct {
	service oauth.TokenService
}

func NewTokenController(service oauth.TokenService) *TokenController {
	return &TokenController{service: service}
}

// Token handles the token endpoint.
// POST /oauth/token (application/x-www-form-urlencoded)
func (c *TokenController) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.WriteOAuthError(w, http.StatusBadRequest, httperrors.OAuthInvalidRequest, "malformed form body")
		return
	}

	if gt := r.PostFormValue("grant_type"); gt != "authorization_code" {
		httperrors.WriteOAuthError(w, http.StatusBadRequest, httperrors.OAuthUnsupportedGrantType, "")
		return
	}

	clientID, clientSecret := clientCredentials(r)
	req := oauth.AuthCodeRequest{
		Code:         r.PostFormValue("code"),
		RedirectURI:  r.PostFormValue("redirect_uri"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CodeVerifier: r.PostFormValue("code_verifier"),
	}

	res, err := c.service.ExchangeAuthorizationCode(r.Context(), req)
	if err != nil {
		writeTokenError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	json.NewEncoder(w).Encode(res)
}

// clientCredentials admite Basic auth o credenciales en el form body.
func clientCredentials(r *http.Request) (string, string) {
	if id, sec, ok := r.BasicAuth(); ok {
		return id, sec
	}
	return r.PostFormValue("client_id"), r.PostFormValue("client_secret")
}

func writeTokenError(w http.ResponseWriter, err error) {
	switch err {
	case oauth.ErrTokenInvalidRequest:
		httperrors.WriteOAuthError(w, http.StatusBadRequest, httperrors.OAuthInvalidRequest, "")
	case oauth.ErrTokenInvalidClient:
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth"`)
		httperrors.WriteOAuthError(w, http.StatusUnauthorized, httperrors.OAuthInvalidClient, "")
	case oauth.ErrTokenInvalidGrant:
		httperrors.WriteOAuthError(w, http.StatusBadRequest, httperrors.OAuthInvalidGrant, "")
	case oauth.ErrTokenUnsupportedGrantType:
		httperrors.WriteOAuthError(w, http.StatusBadRequest, httperrors.OAuthUnsupportedGrantType, "")
	default:
		httperrors.WriteOAuthError(w, http.StatusInternalServerError, httperrors.OAuthServerError, "")
	}
}
