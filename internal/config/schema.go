// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for careerai.
package config

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/careerai/internal/chat"
	ctxengine "github.com/flemzord/careerai/internal/context"
	"github.com/flemzord/careerai/internal/planner"
	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/internal/telemetry"
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "provider.openrouter").
	Modules map[string]yaml.Node `yaml:"modules"`

	// Engine tunes context compression and parameter planning.
	Engine EngineConfig `yaml:"engine,omitempty"`

	// Chat tunes the turn handler.
	Chat chat.Config `yaml:"chat,omitempty"`

	Security  SecurityConfig   `yaml:"security,omitempty"`
	Retention RetentionConfig  `yaml:"retention,omitempty"`
	Telemetry telemetry.Config `yaml:"telemetry,omitempty"`
}

// EngineConfig groups the context engine settings (window, summary shape,
// token budget) with the planner overrides (blend ratio, per-phase
// parameters, per-intent temperature and token floor).
type EngineConfig struct {
	Context ctxengine.Config  `yaml:",inline"`
	Planner planner.Overrides `yaml:",inline"`
}

// SecurityConfig holds per-student admission settings.
type SecurityConfig struct {
	RateLimit  security.RateLimitConfig `yaml:"rate_limit,omitempty"`
	Guardrails security.GuardrailConfig `yaml:"guardrails,omitempty"`
	Audit      AuditConfig              `yaml:"audit,omitempty"`
}

// AuditConfig configures the audit trail.
type AuditConfig struct {
	// Path is a JSONL file that receives audit events. Relative paths are
	// resolved against the data directory. Empty keeps events in the log only.
	Path string `yaml:"path,omitempty"`
}

// RetentionConfig controls the conversation purge job.
type RetentionConfig struct {
	// MaxAge deletes conversations idle for longer than this. Zero keeps
	// conversations forever.
	MaxAge time.Duration `yaml:"max_age,omitempty"`

	// Schedule is a cron expression. Default "0 3 * * *".
	Schedule string `yaml:"schedule,omitempty"`
}
