package gateway

import (
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime           time.Duration `json:"uptime_seconds"`
	Model            string        `json:"model,omitempty"`
	ContextWindow    int           `json:"context_window,omitempty"`
	TrackedStudents  int           `json:"tracked_students"`
	AuditWriteErrors int64         `json:"audit_write_errors"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime: time.Since(g.startedAt).Truncate(time.Second) / time.Second,
		}
		if g.provider != nil {
			resp.Model = g.provider.ModelName()
			resp.ContextWindow = g.provider.ContextWindowSize()
		}
		if g.limiter != nil {
			resp.TrackedStudents = g.limiter.Tracked()
		}
		if g.audit != nil {
			resp.AuditWriteErrors = g.audit.WriteErrors()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
