package openrouter

import "time"

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openai/gpt-4o-mini"
	defaultTimeout = 120 * time.Second
)

// Config holds the YAML configuration for the OpenRouter provider module.
type Config struct {
	// APIKey is the OpenRouter API key. Typically sk-or-v1-...
	APIKey string `yaml:"api_key"`

	// APIKeys are extra keys rotated through when the active key is rate limited.
	APIKeys []string `yaml:"api_keys"`

	// Model is the model identifier. "auto" is mapped to "openrouter/auto".
	// Default: "openai/gpt-4o-mini"
	Model string `yaml:"model"`

	// BaseURL is the OpenRouter API base URL.
	// Default: "https://openrouter.ai/api/v1"
	BaseURL string `yaml:"base_url"`

	// Referer is sent as the HTTP-Referer header (optional).
	Referer string `yaml:"referer"`

	// Title is sent as the X-Title header (optional).
	Title string `yaml:"title"`

	// Timeout bounds dialing, TLS and waiting for response headers.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// ContextWindow overrides automatic context window detection.
	// 0 means use the built-in lookup table.
	ContextWindow int `yaml:"context_window"`
}

// defaults fills in zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// keys returns every configured key, APIKey first.
func (c *Config) keys() []string {
	return append([]string{c.APIKey}, c.APIKeys...)
}

// resolvedModel returns the canonical model name.
// "auto" is mapped to "openrouter/auto".
func (c *Config) resolvedModel() string {
	if c.Model == "auto" {
		return "openrouter/auto"
	}
	return c.Model
}
