package chat

import "time"

// Default values for Config.
const (
	DefaultTimeout     = 2 * time.Minute
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	titleMaxRunes      = 50
)

// Config controls the turn handler.
type Config struct {
	// Timeout bounds one turn, model call included.
	Timeout time.Duration `yaml:"timeout"`

	// MaxAttempts is the number of model calls made for a retryable
	// provider error, the first one included.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration `yaml:"retry_delay"`

	// SystemPrompt replaces the built-in assistant persona when set.
	SystemPrompt string `yaml:"system_prompt"`
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}
