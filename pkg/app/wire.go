package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/careerai/internal/chat"
	"github.com/flemzord/careerai/internal/config"
	ctxengine "github.com/flemzord/careerai/internal/context"
	"github.com/flemzord/careerai/internal/core"
	"github.com/flemzord/careerai/internal/cron"
	"github.com/flemzord/careerai/internal/gateway"
	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/internal/planner"
	"github.com/flemzord/careerai/internal/provider"
	"github.com/flemzord/careerai/internal/reload"
	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/internal/telemetry"
)

// Service names published by the runtime in addition to the gateway ones.
const (
	ServiceProvider = "provider"
	ServiceStore    = "store.history"
	ServiceRedactor = "security.redactor"
)

// ErrNoProvider is returned by Build when no loaded module published a
// provider service.
var ErrNoProvider = errors.New("app: no provider module published the \"provider\" service")

// Runtime is a fully wired application ready to Start.
type Runtime struct {
	App     *core.App
	AppCtx  *core.AppContext
	Config  *config.Config
	Logger  *slog.Logger
	Chat    *chat.Handler
	Metrics *telemetry.Metrics
	Audit   *security.AuditLogger
	Limiter *security.RateLimiter

	// Reloader re-applies the engine section of the configuration file.
	Reloader *reload.Reloader

	contextWindow int
	closers       []func(context.Context) error
}

// schedulerModule lets the cron scheduler take part in the App lifecycle.
type schedulerModule struct {
	*cron.Scheduler
}

func (schedulerModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "cron.scheduler"}
}

// Build loads and validates the configuration, constructs the ambient
// services, loads every configured module and wires the chat handler and
// the scheduled jobs. Nothing is started.
func Build(ctx context.Context, params RunParams) (*Runtime, error) {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := config.ResolvePath()
		if err != nil {
			return nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("app: creating data dir: %w", err)
	}

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	redactor := security.NewRedactor()
	logger := security.NewLogger(out, params.LogLevel, redactor)

	rt := &Runtime{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = rt.Shutdown(context.Background())
		}
	}()

	audit, err := rt.openAudit(cfg.Security.Audit, dataDir, redactor)
	if err != nil {
		return nil, err
	}
	rt.Audit = audit
	rt.Limiter = security.NewRateLimiter(cfg.Security.RateLimit)
	if cfg.Telemetry.MetricsEnabled() {
		rt.Metrics = telemetry.NewMetrics()
	}

	tp, shutdownTracing, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, params.Version)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, shutdownTracing)

	appCtx := core.NewAppContext(logger, dataDir).WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService(ServiceRedactor, redactor)
	appCtx.RegisterService(gateway.ServiceAudit, rt.Audit)
	appCtx.RegisterService(gateway.ServiceRateLimiter, rt.Limiter)
	appCtx.RegisterService(gateway.ServiceConfigPath, cfgPath)
	if rt.Metrics != nil {
		appCtx.RegisterService(gateway.ServiceMetrics, rt.Metrics)
	}
	rt.AppCtx = appCtx

	rt.App = core.NewApp(appCtx)
	if err := rt.App.LoadModules(config.Resolve(cfg)); err != nil {
		return nil, err
	}

	if err := rt.wireChat(telemetry.Tracer(tp)); err != nil {
		return nil, err
	}
	if err := rt.wireScheduler(); err != nil {
		return nil, err
	}
	if err := rt.wireReloader(cfgPath); err != nil {
		return nil, err
	}

	logger.Info("runtime built", "config", cfgPath, "data_dir", dataDir, "version", params.Version)
	ok = true
	return rt, nil
}

// openAudit creates the audit logger, writing JSONL to cfg.Path when set.
func (rt *Runtime) openAudit(cfg config.AuditConfig, dataDir string, redactor *security.Redactor) (*security.AuditLogger, error) {
	logger := rt.Logger
	acfg := security.AuditLoggerConfig{
		Redactor: redactor,
		OnEvent: func(e security.AuditEvent) {
			logger.Info("audit", "type", string(e.Type), "student_id", e.StudentID, "conversation_id", e.ConversationID)
		},
	}
	if cfg.Path != "" {
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("app: opening audit log: %w", err)
		}
		rt.closers = append(rt.closers, closeFunc(f))
		acfg.Writer = f
	}
	return security.NewAuditLogger(acfg), nil
}

func closeFunc(c io.Closer) func(context.Context) error {
	return func(context.Context) error { return c.Close() }
}

// wireChat builds the chat handler from the loaded provider and store and
// publishes it for the gateway. Without a store module, conversations
// live in memory.
func (rt *Runtime) wireChat(tracer trace.Tracer) error {
	p, found := core.Service[provider.Provider](rt.AppCtx, ServiceProvider)
	if !found {
		return ErrNoProvider
	}
	store, found := core.Service[memory.HistoryStore](rt.AppCtx, ServiceStore)
	if !found {
		rt.Logger.Warn("no store module configured, conversations are kept in memory")
		store = memory.NewInMemoryHistoryStore()
		rt.AppCtx.RegisterService(ServiceStore, store)
	}

	rt.contextWindow = p.ContextWindowSize()
	guardrails, err := security.NewGuardrails(rt.Config.Security.Guardrails)
	if err != nil {
		return err
	}

	pl, asm := rt.buildEngine(rt.Config.Engine)
	h, err := chat.New(chat.Deps{
		Store:      store,
		Provider:   p,
		Planner:    pl,
		Assembler:  asm,
		Guardrails: guardrails,
		Limiter:    rt.Limiter,
		Audit:      rt.Audit,
		Metrics:    rt.Metrics,
		Tracer:     tracer,
		Logger:     rt.Logger.With("component", "chat"),
		Config:     rt.Config.Chat,
	})
	if err != nil {
		return err
	}
	rt.Chat = h
	rt.AppCtx.RegisterService(gateway.ServiceChat, h)
	rt.Logger.Info("chat handler wired", "model", p.ModelName(), "context_window", rt.contextWindow)
	return nil
}

// buildEngine turns the engine section into a planner and an assembler.
// A zero token budget falls back to the provider's context window.
func (rt *Runtime) buildEngine(cfg config.EngineConfig) (*planner.Planner, *ctxengine.Assembler) {
	c := cfg.Context
	if c.MaxContextTokens == 0 {
		c.MaxContextTokens = rt.contextWindow
	}
	asm := ctxengine.NewAssembler(
		ctxengine.NewCharEstimator(c.CharsPerToken),
		ctxengine.NewCompressor(nil, nil, c),
		c,
	)
	return planner.New(cfg.Planner.Apply(planner.DefaultTables())), asm
}

// applyEngine swaps the chat handler's engine for the one described by cfg.
// Other sections need a restart to take effect.
func (rt *Runtime) applyEngine(cfg *config.Config) error {
	pl, asm := rt.buildEngine(cfg.Engine)
	rt.Chat.Reconfigure(pl, asm)
	return nil
}

// wireReloader watches the configuration file and appends the watcher to
// the App lifecycle.
func (rt *Runtime) wireReloader(cfgPath string) error {
	r, err := reload.New(reload.Config{
		Path:   cfgPath,
		Apply:  rt.applyEngine,
		Logger: rt.Logger.With("module", "reload.watcher"),
	})
	if err != nil {
		return err
	}
	rt.Reloader = r
	rt.App.AppendModule("reload.watcher", r)
	return nil
}

// wireScheduler registers the retention and rate limiter jobs and appends
// the scheduler to the App lifecycle.
func (rt *Runtime) wireScheduler() error {
	store, _ := core.Service[memory.HistoryStore](rt.AppCtx, ServiceStore)
	logger := rt.Logger.With("module", "cron.scheduler")

	s := cron.NewScheduler(logger, cron.WithRunObserver(rt.Metrics.ObserveJob))
	if rt.Config.Retention.MaxAge > 0 {
		err := s.RegisterJob(&cron.RetentionJob{
			Store:        store,
			MaxAge:       rt.Config.Retention.MaxAge,
			Logger:       logger,
			Audit:        rt.Audit,
			ScheduleExpr: rt.Config.Retention.Schedule,
			OnPurge:      rt.Metrics.RecordPurge,
		})
		if err != nil {
			return err
		}
	}
	if err := s.RegisterJob(&cron.RateLimitPruneJob{Limiter: rt.Limiter, Logger: logger}); err != nil {
		return err
	}
	rt.App.AppendModule("cron.scheduler", schedulerModule{s})
	return nil
}

// Start starts every module in load order.
func (rt *Runtime) Start() error {
	return rt.App.Start()
}

// Shutdown stops the modules, flushes traces and closes the audit file.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	if rt.App != nil {
		rt.App.Stop()
	}
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
