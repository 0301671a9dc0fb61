package gateway

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status string `json:"status"` // "ok" or "degraded"
	Model  string `json:"model,omitempty"`
	Store  string `json:"store,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when the conversation store answers, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if g.provider != nil {
			resp.Model = g.provider.ModelName()
		}

		if g.store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			resp.Store = "ok"
			if err := g.store.Ping(ctx); err != nil {
				resp.Store = "unreachable"
				resp.Status = "degraded"
			}
		}

		code := http.StatusOK
		if resp.Status == "degraded" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}
