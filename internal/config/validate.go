package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flemzord/careerai/internal/core"
	"github.com/flemzord/careerai/internal/cron"
	"github.com/flemzord/careerai/internal/security"
)

// Validate checks the structural validity of a Config and reports every
// problem found, joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	errs = append(errs, validateModules(cfg)...)
	errs = append(errs, validateEngine(cfg.Engine)...)
	errs = append(errs, validateSecurity(cfg.Security)...)
	errs = append(errs, validateRetention(cfg.Retention)...)

	if r := cfg.Telemetry.SampleRate; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("config: telemetry.sample_rate must be within [0,1], got %g", r))
	}
	if cfg.Chat.MaxAttempts < 0 {
		errs = append(errs, errors.New("config: chat.max_attempts must not be negative"))
	}

	return errors.Join(errs...)
}

func validateModules(cfg *Config) []error {
	var errs []error
	if len(cfg.Modules) == 0 {
		return []error{errors.New("config: at least one module must be configured")}
	}

	hasProvider := false
	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
			continue
		}
		if strings.HasPrefix(id, "provider.") {
			hasProvider = true
		}
	}
	if !hasProvider {
		errs = append(errs, errors.New("config: a provider module (provider.*) is required"))
	}
	return errs
}

func validateEngine(e EngineConfig) []error {
	var errs []error
	c := e.Context
	if c.Window < 0 {
		errs = append(errs, fmt.Errorf("config: engine.window must not be negative, got %d", c.Window))
	}
	if c.MaxContextTokens < 0 {
		errs = append(errs, errors.New("config: engine.max_context_tokens must not be negative"))
	}
	if c.MaxContextTokens > 0 && c.ReservedForReply >= c.MaxContextTokens {
		errs = append(errs, errors.New("config: engine.reserved_for_reply must be below max_context_tokens"))
	}
	if c.CharsPerToken < 0 {
		errs = append(errs, errors.New("config: engine.chars_per_token must not be negative"))
	}
	if err := e.Planner.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: engine: %w", err))
	}
	return errs
}

func validateSecurity(sec SecurityConfig) []error {
	var errs []error
	if sec.RateLimit.MessagesPerMin < 0 || sec.RateLimit.MessagesPerHour < 0 {
		errs = append(errs, errors.New("config: security.rate_limit values must not be negative"))
	}
	if sec.RateLimit.MessagesPerMin > 0 && sec.RateLimit.MessagesPerHour > 0 &&
		sec.RateLimit.MessagesPerMin > sec.RateLimit.MessagesPerHour {
		errs = append(errs, errors.New("config: security.rate_limit.messages_per_min exceeds messages_per_hour"))
	}
	if sec.Guardrails.MaxInputChars < 0 {
		errs = append(errs, errors.New("config: security.guardrails.max_input_chars must not be negative"))
	}
	if _, err := security.NewGuardrails(sec.Guardrails); err != nil {
		errs = append(errs, fmt.Errorf("config: security.guardrails: %w", err))
	}
	return errs
}

func validateRetention(r RetentionConfig) []error {
	var errs []error
	if r.MaxAge < 0 {
		errs = append(errs, errors.New("config: retention.max_age must not be negative"))
	}
	if r.Schedule != "" {
		if err := cron.ValidateSchedule(r.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("config: retention.schedule: %w", err))
		}
	}
	return errs
}
