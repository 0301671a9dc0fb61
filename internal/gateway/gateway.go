// Package gateway provides the HTTP and WebSocket surface of the chat
// service, plus health, metrics, and admin endpoints. It binds to loopback
// by default and follows the module system pattern.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/careerai/internal/chat"
	"github.com/flemzord/careerai/internal/core"
	"github.com/flemzord/careerai/internal/provider"
	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/internal/telemetry"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Service names resolved from the registry at Start.
const (
	ServiceChat        = "chat.handler"
	ServiceMetrics     = "telemetry.metrics"
	ServiceAudit       = "security.audit"
	ServiceRateLimiter = "security.ratelimiter"
	ServiceConfigPath  = "config.path"
)

// ErrNoChatHandler is returned by Start when no chat handler was registered.
var ErrNoChatHandler = errors.New("gateway: chat handler service not registered")


// Gateway is the HTTP gateway module. It is a leaf module: nothing
// imports it.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time

	// Resolved lazily at Start() via service registry.
	chat       *chat.Handler
	metrics    *telemetry.Metrics
	audit      *security.AuditLogger
	limiter    *security.RateLimiter
	provider   provider.Provider
	store      core.Pinger
	configPath string
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.config.defaults()
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return g.config.Auth.validate()
}

// resolve binds the services registered by other modules and the app.
func (g *Gateway) resolve() error {
	h, ok := core.Service[*chat.Handler](g.appCtx, ServiceChat)
	if !ok {
		return ErrNoChatHandler
	}
	g.chat = h
	g.metrics, _ = core.Service[*telemetry.Metrics](g.appCtx, ServiceMetrics)
	g.audit, _ = core.Service[*security.AuditLogger](g.appCtx, ServiceAudit)
	g.limiter, _ = core.Service[*security.RateLimiter](g.appCtx, ServiceRateLimiter)
	g.provider, _ = core.Service[provider.Provider](g.appCtx, "provider")
	if svc, ok := g.appCtx.GetService("store.history"); ok {
		g.store, _ = svc.(core.Pinger)
	}
	g.configPath, _ = core.Service[string](g.appCtx, ServiceConfigPath)
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	if err := g.resolve(); err != nil {
		return err
	}
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	go func() {
		g.logger.Info("gateway listening", "addr", ln.Addr().String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}

// Interface guards.
var (
	_ core.Module       = (*Gateway)(nil)
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)
