// Package health expone el endpoint de liveness/readiness.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger es lo mínimo que el health check necesita del store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	store Pinger
}

func NewController(store Pinger) *Controller {
	return &Controller{store: store}
}

type response struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// Healthz reports service and storage health.
// GET /healthz
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response{Status: "ok", Storage: "ok"}
	code := http.StatusOK
	if err := c.store.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Storage = err.Error()
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
