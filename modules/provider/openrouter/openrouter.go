// Package openrouter implements a provider.Provider backed by the OpenRouter
// API, which exposes many models through an OpenAI-compatible endpoint.
package openrouter

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/careerai/internal/core"
	"github.com/flemzord/careerai/internal/provider"
	"github.com/flemzord/careerai/internal/security"
)

// ServiceName is the AppContext service under which the provider is published.
const ServiceName = "provider"

// RedactorService is the service whose redactor learns the configured keys.
const RedactorService = "security.redactor"

// Interface guards.
var (
	_ provider.Provider      = (*OpenRouter)(nil)
	_ provider.HealthChecker = (*OpenRouter)(nil)
	_ core.Configurable      = (*OpenRouter)(nil)
	_ core.Provisioner       = (*OpenRouter)(nil)
	_ core.Validator         = (*OpenRouter)(nil)
)

func init() {
	core.RegisterModule(&OpenRouter{})
}

// OpenRouter is a provider.Provider that communicates with the OpenRouter API.
type OpenRouter struct {
	config Config
	client *http.Client
	auth   *provider.AuthProfile
	logger *slog.Logger
}

// New creates a provider outside the module system, e.g. for tests and the CLI.
func New(cfg Config, client *http.Client) (*OpenRouter, error) {
	cfg.defaults()
	if client == nil {
		client = http.DefaultClient
	}
	auth, err := provider.NewAuthProfile(cfg.keys()...)
	if err != nil {
		return nil, fmt.Errorf("openrouter: %w", err)
	}
	return &OpenRouter{config: cfg, client: client, auth: auth, logger: slog.Default()}, nil
}

// ModuleInfo returns the module metadata for registration.
func (o *OpenRouter) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "provider.openrouter",
		New: func() core.Module { return &OpenRouter{} },
	}
}

// Configure decodes the YAML configuration and applies defaults.
func (o *OpenRouter) Configure(node *yaml.Node) error {
	if err := node.Decode(&o.config); err != nil {
		return fmt.Errorf("openrouter: decoding config: %w", err)
	}
	o.config.defaults()
	return nil
}

// Provision creates the HTTP client, registers the API keys with the log
// redactor and publishes the provider as a service.
//
// The client uses transport-level timeouts (dial + TLS + response header)
// instead of http.Client.Timeout so long streams are governed by the
// request context only.
func (o *OpenRouter) Provision(ctx *core.AppContext) error {
	o.config.defaults()
	o.logger = ctx.Logger

	timeout := o.config.Timeout
	o.client = &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}

	// A missing key is reported by Validate.
	if auth, err := provider.NewAuthProfile(o.config.keys()...); err == nil {
		o.auth = auth
	}

	if r, ok := core.Service[*security.Redactor](ctx, RedactorService); ok {
		r.AddLiteral(o.config.keys()...)
	}

	ctx.RegisterService(ServiceName, provider.Provider(o))
	o.logger.Info("openrouter provider provisioned", "model", o.config.resolvedModel())
	return nil
}

// Validate checks that required configuration fields are set.
func (o *OpenRouter) Validate() error {
	var errs []error
	if !slices.ContainsFunc(o.config.keys(), func(k string) bool { return k != "" }) {
		errs = append(errs, errors.New("openrouter: api_key is required"))
	}
	if o.config.Model == "" {
		errs = append(errs, errors.New("openrouter: model is required"))
	}
	if o.config.Timeout < 0 {
		errs = append(errs, errors.New("openrouter: timeout must not be negative"))
	}

	u, err := url.Parse(o.config.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("openrouter: invalid base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("openrouter: base_url scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("openrouter: base_url must include a host"))
	}

	return errors.Join(errs...)
}
