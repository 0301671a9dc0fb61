package gateway

import (
	"errors"
	"time"

	"github.com/flemzord/careerai/internal/security"
)

// Config holds HTTP gateway configuration.
type Config struct {
	Bind            string        `yaml:"bind"`
	Auth            AuthConfig    `yaml:"auth"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies and WebSocket frames.
	MaxBodyBytes int `yaml:"max_body_bytes"`

	// MaxJSONDepth caps the nesting of request bodies.
	MaxJSONDepth int `yaml:"max_json_depth"`

	// AllowedOrigins are host patterns accepted for cross-origin WebSocket
	// connections, e.g. "app.example.com" or "*.example.com".
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8080"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 2 * time.Minute
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = security.DefaultMaxBodySize
	}
	if c.MaxJSONDepth <= 0 {
		c.MaxJSONDepth = security.DefaultMaxJSONDepth
	}
}

// AuthConfig configures authentication for the API and admin endpoints.
// BearerToken and basic credentials belong to the operator and may act for
// any student. StudentTokens maps a bearer token to the one student it may
// act for; such tokens never reach the admin endpoints.
type AuthConfig struct {
	BearerToken   string            `yaml:"bearer_token"`
	BasicUser     string            `yaml:"basic_user"`
	BasicPass     string            `yaml:"basic_pass"`
	StudentTokens map[string]string `yaml:"student_tokens"`
}

// IsConfigured returns true if any auth method is configured.
func (a AuthConfig) IsConfigured() bool {
	return a.hasOperator() || len(a.StudentTokens) > 0
}

func (a AuthConfig) hasOperator() bool {
	return a.BearerToken != "" || (a.BasicUser != "" && a.BasicPass != "")
}

func (a AuthConfig) validate() error {
	for token, student := range a.StudentTokens {
		switch {
		case token == "" || student == "":
			return errors.New("gateway: auth.student_tokens entries need a token and a student id")
		case token == a.BearerToken:
			return errors.New("gateway: a student token must differ from the operator bearer token")
		}
	}
	return nil
}
