package openrouter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/flemzord/careerai/internal/provider"
)

// newTestServer creates an httptest.Server with the given handler and
// registers cleanup.
func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// newTestProvider creates an OpenRouter instance pointing at the test server.
func newTestProvider(t *testing.T, srv *httptest.Server, keys ...string) *OpenRouter {
	t.Helper()
	cfg := Config{APIKey: "sk-or-test", APIKeys: keys, Model: "openai/gpt-4o-mini", BaseURL: srv.URL}
	o, err := New(cfg, srv.Client())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o
}

func ptr(v float64) *float64 { return &v }

func TestBuildRequest_CarriesSamplingParameters(t *testing.T) {
	t.Parallel()

	o := &OpenRouter{config: Config{Model: "openai/gpt-4o-mini"}}
	apiReq := o.buildRequest(provider.CompletionRequest{
		Messages: []provider.LLMMessage{
			{Role: provider.MessageRoleSystem, Content: "You are a career assistant."},
			{Role: provider.MessageRoleUser, Content: "Find me jobs"},
		},
		MaxTokens:        2000,
		Temperature:      ptr(0.35),
		TopP:             ptr(0.75),
		FrequencyPenalty: ptr(0.3),
		PresencePenalty:  ptr(0.2),
	}, true)

	data, err := json.Marshal(apiReq)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"model":             "openai/gpt-4o-mini",
		"max_tokens":        2000.0,
		"temperature":       0.35,
		"top_p":             0.75,
		"frequency_penalty": 0.3,
		"presence_penalty":  0.2,
		"stream":            true,
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s = %v, want %v", k, body[k], v)
		}
	}
	if msgs, _ := body["messages"].([]any); len(msgs) != 2 {
		t.Errorf("messages = %v", body["messages"])
	}
}

func TestBuildRequest_OmitsUnsetPenalties(t *testing.T) {
	t.Parallel()

	o := &OpenRouter{config: Config{Model: "auto"}}
	data, _ := json.Marshal(o.buildRequest(provider.CompletionRequest{}, false))

	var body map[string]any
	_ = json.Unmarshal(data, &body)
	for _, k := range []string{"frequency_penalty", "presence_penalty", "temperature"} {
		if _, ok := body[k]; ok {
			t.Errorf("%s present in request without a value", k)
		}
	}
	if body["model"] != "openrouter/auto" {
		t.Errorf("model = %v, want openrouter/auto", body["model"])
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	var got apiRequest
	var headers http.Header
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiResponse{
			Choices: []apiChoice{{Message: apiMessage{Role: "assistant", Content: "Try these roles."}, FinishReason: "stop"}},
			Usage:   apiUsage{PromptTokens: 5, CompletionTokens: 4, TotalTokens: 9},
		})
	})

	o := newTestProvider(t, srv)
	o.config.Referer = "https://careers.example"
	o.config.Title = "careerai"

	resp, err := o.Complete(t.Context(), provider.CompletionRequest{
		Messages:        []provider.LLMMessage{{Role: provider.MessageRoleUser, Content: "hi"}},
		PresencePenalty: ptr(0.1),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "Try these roles." || resp.FinishReason != provider.FinishReasonStop {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Usage.TotalTokens != 9 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if got.PresencePenalty == nil || *got.PresencePenalty != 0.1 {
		t.Errorf("presence_penalty not forwarded: %+v", got.PresencePenalty)
	}
	if got.Stream {
		t.Error("stream = true for Complete")
	}
	if h := headers.Get("Authorization"); h != "Bearer sk-or-test" {
		t.Errorf("Authorization = %q", h)
	}
	if h := headers.Get("HTTP-Referer"); h != "https://careers.example" {
		t.Errorf("HTTP-Referer = %q", h)
	}
	if h := headers.Get("X-Title"); h != "careerai" {
		t.Errorf("X-Title = %q", h)
	}
}

func TestComplete_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, provider.ErrRateLimit},
		{http.StatusBadGateway, ``, provider.ErrProviderDown},
		{http.StatusBadRequest, `{"error":{"message":"This model's maximum context length is 8192"}}`, provider.ErrContextLength},
		{http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, provider.ErrAuth},
		{http.StatusForbidden, ``, provider.ErrAuth},
		{http.StatusPaymentRequired, `{"error":{"message":"no credits"}}`, provider.ErrQuota},
		{http.StatusNotFound, `{"error":{"message":"no such model"}}`, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := newTestProvider(t, srv).Complete(t.Context(), provider.CompletionRequest{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want wrapping %v", err, tt.want)
			}
			if tt.want == nil && (provider.IsRetryable(err) || provider.IsKeyScoped(err)) {
				t.Errorf("err = %v should be neither retryable nor key scoped", err)
			}
		})
	}
}

func TestComplete_RotatesKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, provider.ErrRateLimit},
		{"rejected key", http.StatusUnauthorized, provider.ErrAuth},
		{"out of credits", http.StatusPaymentRequired, provider.ErrQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				mu   sync.Mutex
				keys []string
			)
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				keys = append(keys, r.Header.Get("Authorization"))
				first := len(keys) == 1
				mu.Unlock()
				if first {
					w.WriteHeader(tt.status)
					return
				}
				_ = json.NewEncoder(w).Encode(apiResponse{Choices: []apiChoice{{Message: apiMessage{Content: "ok"}}}})
			})

			o := newTestProvider(t, srv, "sk-or-second")
			if _, err := o.Complete(t.Context(), provider.CompletionRequest{}); !errors.Is(err, tt.want) {
				t.Fatalf("first call err = %v, want %v", err, tt.want)
			}
			if _, err := o.Complete(t.Context(), provider.CompletionRequest{}); err != nil {
				t.Fatalf("second call: %v", err)
			}

			mu.Lock()
			defer mu.Unlock()
			if len(keys) != 2 || keys[0] != "Bearer sk-or-test" || keys[1] != "Bearer sk-or-second" {
				t.Errorf("keys = %v", keys)
			}
		})
	}
}

func TestComplete_KeepsKeyOnServerError(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		keys []string
	)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keys = append(keys, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	o := newTestProvider(t, srv, "sk-or-second")
	for range 2 {
		if _, err := o.Complete(t.Context(), provider.CompletionRequest{}); !errors.Is(err, provider.ErrProviderDown) {
			t.Fatalf("err = %v, want provider down", err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, k := range keys {
		if k != "Bearer sk-or-test" {
			t.Errorf("keys = %v, want primary key only", keys)
			break
		}
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			http.Error(w, "expected stream", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, data := range []string{
			`{"choices":[{"delta":{"content":"Build "}}]}`,
			`{"choices":[{"delta":{"content":"a portfolio."},"finish_reason":"stop"}]}`,
			`[DONE]`,
		} {
			_, _ = w.Write([]byte("data: " + data + "\n\n"))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	})

	ch, err := newTestProvider(t, srv).Stream(t.Context(), provider.CompletionRequest{})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	resp, err := provider.Collect(ch)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if resp.Content != "Build a portfolio." {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestStream_HTTPError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := newTestProvider(t, srv).Stream(t.Context(), provider.CompletionRequest{}); !errors.Is(err, provider.ErrProviderDown) {
		t.Errorf("err = %v, want ErrProviderDown", err)
	}
}

func TestContextWindowSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		model         string
		contextWindow int
		want          int
	}{
		{name: "known model", model: "openai/gpt-4o-mini", want: 128000},
		{name: "unknown model", model: "unknown/model", want: defaultContextWindow},
		{name: "config override", model: "openai/gpt-4o", contextWindow: 4096, want: 4096},
		{name: "auto model", model: "auto", want: 128000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := &OpenRouter{config: Config{Model: tt.model, ContextWindow: tt.contextWindow}}
			if got := o.ContextWindowSize(); got != tt.want {
				t.Errorf("ContextWindowSize() = %d, want %d", got, tt.want)
			}
		})
	}
}
