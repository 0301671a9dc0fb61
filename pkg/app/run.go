// Package app provides the shared entry point used by the careerai binary:
// it loads the configuration, builds the runtime and runs it until a
// shutdown signal arrives.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, config.ResolvePath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level

	// LogOutput receives the process log. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Run builds the runtime, starts all modules, and blocks until SIGINT or
// SIGTERM is received. SIGHUP re-applies the engine configuration.
func Run(params RunParams) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := Build(ctx, params)
	if err != nil {
		return err
	}
	if err := rt.Start(); err != nil {
		_ = rt.Shutdown(context.Background())
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

wait:
	for {
		select {
		case <-hup:
			if err := rt.Reloader.Reload(); err != nil {
				rt.Logger.Error("reload failed", "error", err)
			}
		case <-ctx.Done():
			break wait
		}
	}
	rt.Logger.Info("shutdown signal received")
	if err := rt.Shutdown(context.Background()); err != nil {
		rt.Logger.Error("shutdown incomplete", "error", err)
		return err
	}
	rt.Logger.Info("shutdown complete")
	return nil
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/careerai if set, otherwise
// ~/.local/share/careerai.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok && dir != "" {
		return filepath.Join(dir, "careerai")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "careerai")
}
