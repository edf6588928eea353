package server

import (
	"context"
	"net/http"
	"time"
)

const probeTimeout = 5 * time.Second

// HealthHandler serves the liveness routes.
//
// /health also reports whether the catalog credential can be obtained.
type HealthHandler struct {
	probe func(ctx context.Context) error
}

// NewHealthHandler creates a [HealthHandler]. A nil probe reports the catalog as unknown.
func NewHealthHandler(probe func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{probe: probe}
}

func (h *HealthHandler) Routes() []string {
	return []string{"GET /{$}", "GET /health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Pattern != "GET /health" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	catalog := "unknown"
	if h.probe != nil {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		if err := h.probe(ctx); err != nil {
			catalog = "unavailable"
		} else {
			catalog = "ok"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "catalog": catalog})
}
