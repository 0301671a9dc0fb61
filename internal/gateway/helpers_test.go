package gateway

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/careerai/internal/chat"
	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/internal/provider/providertest"
	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/internal/telemetry"
)

// testEnv is a gateway wired to an in-memory store and a mock provider,
// served by httptest.
type testEnv struct {
	gw       *Gateway
	srv      *httptest.Server
	store    *memory.InMemoryHistoryStore
	provider *providertest.MockProvider
}

type envOption func(*Config, *chat.Deps)

func withAuth(a AuthConfig) envOption {
	return func(c *Config, _ *chat.Deps) { c.Auth = a }
}

func withLimiter(perMin int) envOption {
	return func(_ *Config, d *chat.Deps) {
		d.Limiter = security.NewRateLimiter(security.RateLimitConfig{MessagesPerMin: perMin, MessagesPerHour: 100})
	}
}

func newTestEnv(t *testing.T, mock *providertest.MockProvider, opts ...envOption) *testEnv {
	t.Helper()
	if mock == nil {
		mock = &providertest.MockProvider{
			CompleteFunc: providertest.Reply("Consider a junior data analyst role."),
			StreamFunc:   providertest.StreamReply("Consider ", "a junior ", "data analyst role."),
		}
	}
	store := memory.NewInMemoryHistoryStore()
	cfg := Config{}
	deps := chat.Deps{Store: store, Provider: mock, Guardrails: mustGuardrails(t)}
	for _, o := range opts {
		o(&cfg, &deps)
	}
	cfg.defaults()

	metrics := telemetry.NewMetrics()
	deps.Metrics = metrics
	h, err := chat.New(deps)
	if err != nil {
		t.Fatalf("chat.New: %v", err)
	}

	g := &Gateway{
		config:   cfg,
		logger:   slog.New(slog.DiscardHandler),
		chat:     h,
		metrics:  metrics,
		limiter:  deps.Limiter,
		provider: mock,
	}
	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)
	return &testEnv{gw: g, srv: srv, store: store, provider: mock}
}

func mustGuardrails(t *testing.T) *security.Guardrails {
	t.Helper()
	g, err := security.NewGuardrails(security.GuardrailConfig{})
	if err != nil {
		t.Fatalf("NewGuardrails: %v", err)
	}
	return g
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode: %v", err)
			}
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// mustYAMLNode parses YAML text into a *yaml.Node for Configure calls.
func mustYAMLNode(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		t.Fatalf("YAML parse: %v", err)
	}
	if len(node.Content) > 0 {
		return node.Content[0]
	}
	return &node
}
