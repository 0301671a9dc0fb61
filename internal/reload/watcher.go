// Package reload re-applies the configuration file to a running service,
// either when the file changes on disk or on demand (SIGHUP).
//
// Changes are picked up from filesystem notifications when the platform
// provides them, with a modification-time poll as a fallback.
package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flemzord/careerai/internal/config"
	"github.com/flemzord/careerai/internal/core"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultDebounce     = 250 * time.Millisecond
)

// ErrNoApply is returned by New when Config.Apply is nil.
var ErrNoApply = errors.New("reload: apply function is required")

// ApplyFunc installs a freshly loaded and validated configuration.
type ApplyFunc func(cfg *config.Config) error

// Config configures a Reloader.
type Config struct {
	// Path is the configuration file to watch.
	Path string

	// PollInterval is how often the file's modification time is checked.
	// Defaults to 5 seconds if zero.
	PollInterval time.Duration

	// Debounce coalesces bursts of notifications (editors often write a
	// file in several steps). Defaults to 250ms if zero.
	Debounce time.Duration

	Apply  ApplyFunc
	Logger *slog.Logger
}

// Reloader polls a configuration file and re-applies it when it changes.
// It joins the App lifecycle as the "reload.watcher" module.
type Reloader struct {
	cfg Config

	mu      sync.Mutex // serializes Reload
	lastMod time.Time
	applied atomic.Int64

	stop    chan struct{}
	stopped chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Reloader. The current modification time of the file is
// taken as the baseline, so an unchanged file is never re-applied.
func New(cfg Config) (*Reloader, error) {
	if cfg.Apply == nil {
		return nil, ErrNoApply
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	r := &Reloader{
		cfg:     cfg,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	r.lastMod = r.modTime()
	return r, nil
}

// ModuleInfo implements core.Module.
func (r *Reloader) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "reload.watcher"}
}

// Reload loads and validates the file, then hands it to Apply. An invalid
// file leaves the running configuration untouched.
func (r *Reloader) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := config.Load(r.cfg.Path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := r.cfg.Apply(cfg); err != nil {
		return fmt.Errorf("reload: applying: %w", err)
	}
	r.applied.Add(1)
	r.cfg.Logger.Info("configuration reloaded", "path", r.cfg.Path)
	return nil
}

// Applied reports how many reloads succeeded.
func (r *Reloader) Applied() int64 {
	return r.applied.Load()
}

// Start implements core.Starter. Only the first call starts polling.
func (r *Reloader) Start() error {
	r.startOnce.Do(func() {
		r.started.Store(true)
		go r.watch(r.notifier())
	})
	return nil
}

// Stop implements core.Stopper. Safe to call multiple times and before Start.
func (r *Reloader) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	if !r.started.Load() {
		return nil
	}
	select {
	case <-r.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// notifier watches the directory holding the file, so that editors which
// replace the file by renaming still trigger events. It returns nil when
// notifications are unavailable.
func (r *Reloader) notifier() *fsnotify.Watcher {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.cfg.Logger.Warn("file notifications unavailable, polling only", "error", err)
		return nil
	}
	if err := w.Add(filepath.Dir(r.cfg.Path)); err != nil {
		r.cfg.Logger.Warn("cannot watch config directory, polling only", "error", err)
		_ = w.Close()
		return nil
	}
	return w
}

func (r *Reloader) watch(w *fsnotify.Watcher) {
	defer close(r.stopped)

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if w != nil {
		defer func() { _ = w.Close() }()
		events, errs = w.Events, w.Errors
	}

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	debounce := time.NewTimer(r.cfg.Debounce)
	debounce.Stop()
	defer debounce.Stop()

	target := filepath.Clean(r.cfg.Path)
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.checkModified()
		case <-debounce.C:
			r.checkModified()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(r.cfg.Debounce)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.cfg.Logger.Warn("config watch error", "error", err)
		}
	}
}

// checkModified reloads when the file is newer than the last applied one.
func (r *Reloader) checkModified() {
	current := r.modTime()
	if current.IsZero() || !current.After(r.lastMod) {
		return
	}
	r.lastMod = current
	if err := r.Reload(); err != nil {
		r.cfg.Logger.Error("config change rejected", "error", err)
	}
}

func (r *Reloader) modTime() time.Time {
	info, err := os.Stat(r.cfg.Path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Interface guards.
var (
	_ core.Module  = (*Reloader)(nil)
	_ core.Starter = (*Reloader)(nil)
	_ core.Stopper = (*Reloader)(nil)
)
