package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(g.metricsMiddleware)

	// Public: no auth required.
	r.Get("/health", g.handleHealth())
	if g.metrics != nil {
		r.Method(http.MethodGet, "/metrics", g.metrics.Handler())
	}

	// Chat API: bearer auth when configured.
	r.Group(func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth, g.audit))
		}
		r.Route("/v1", func(r chi.Router) {
			r.Post("/chat", g.handleChat())
			r.Get("/conversations/{id}", g.handleGetConversation())
			r.Delete("/conversations/{id}", g.handleDeleteConversation())
			r.Get("/plan", g.handlePlan())
		})
		r.Get("/ws/chat", g.handleWebSocket())
	})

	// Admin endpoints: mounted only with an operator credential.
	if g.config.Auth.hasOperator() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.audit), requireAdmin(g.audit))
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				r.Get("/modules", g.handleGetAllModules())
				r.Get("/config", g.handleGetConfig())
			})
		})
	}

	return r
}
