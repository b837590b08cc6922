// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/scopegate/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/scopegate/internal/http/controllers/oauth"
	httperrors "github.com/dropDatabas3/scopegate/internal/http/errors"
	mw "github.com/dropDatabas3/scopegate/internal/http/middlewares"
)

// Deps contiene las dependencias del router.
type Deps struct {
	OAuth   *oauthctrl.Controllers
	Health  *healthctrl.Controller
	Metrics http.Handler
	// WithMetrics instrumenta requests; lo inyecta el server para no acoplar
	// el router al registry de prometheus.
	WithMetrics mw.Middleware
}

// New construye el router con los middlewares globales y las rutas OAuth.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Route("/oauth", func(r chi.Router) {
		r.Use(mw.WithNoStore())
		r.Get("/authorize", d.OAuth.Authorize.Authorize)
		r.Get("/consent/info", d.OAuth.Consent.GetInfo)
		r.Post("/consent/accept", d.OAuth.Consent.Accept)
		r.Post("/token", d.OAuth.Token.Token)
		r.Post("/introspect", d.OAuth.Introspect.Introspect)
		r.Post("/revoke", d.OAuth.Revoke.Revoke)
	})

	r.Get("/healthz", d.Health.Healthz)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})

	// Stack global: recover primero (más externo), headers al final.
	global := []mw.Middleware{mw.WithRecover(), mw.WithRequestID()}
	if d.WithMetrics != nil {
		global = append(global, d.WithMetrics)
	}
	global = append(global, mw.WithLogging(), mw.WithSecurityHeaders())
	return mw.Chain(r, global...)
}
