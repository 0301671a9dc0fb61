package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

const sampleYAML = `version: "1"
modules:
  provider.openrouter:
    api_key: ${CAREERAI_TEST_KEY}
    model: ${CAREERAI_TEST_MODEL:-auto}
  store.sqlite: {}
engine:
  window: 8
  blend_ratio: 0.3
  token_floors:
    interview-prep: 900
chat:
  max_attempts: 2
security:
  rate_limit:
    messages_per_min: 5
    messages_per_hour: 50
  guardrails:
    max_input_chars: 1500
retention:
  max_age: 720h
telemetry:
  service_name: careerai-test
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("CAREERAI_TEST_KEY", "sk-or-v1-abc")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Version != "1" || len(cfg.Modules) != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	var or struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	}
	node := cfg.Modules["provider.openrouter"]
	if err := node.Decode(&or); err != nil {
		t.Fatalf("decode module: %v", err)
	}
	if or.APIKey != "sk-or-v1-abc" || or.Model != "auto" {
		t.Errorf("module config = %+v", or)
	}

	if r := cfg.Engine.Planner.BlendRatio; cfg.Engine.Context.Window != 8 || r == nil || *r != 0.3 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.Planner.TokenFloor["interview-prep"] != 900 {
		t.Errorf("token floors = %v", cfg.Engine.Planner.TokenFloor)
	}
	if cfg.Chat.MaxAttempts != 2 {
		t.Errorf("chat = %+v", cfg.Chat)
	}
	if cfg.Security.RateLimit.MessagesPerMin != 5 || cfg.Security.Guardrails.MaxInputChars != 1500 {
		t.Errorf("security = %+v", cfg.Security)
	}
	if cfg.Retention.MaxAge != 30*24*time.Hour {
		t.Errorf("retention = %v", cfg.Retention.MaxAge)
	}
	if cfg.Telemetry.ServiceName != "careerai-test" {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	_, err := Load(writeConfig(t, "version: \"1\"\nkey: ${CAREERAI_SURELY_UNSET_VAR}\n"))
	if !errors.Is(err, ErrUnresolvedVariable) {
		t.Fatalf("err = %v, want ErrUnresolvedVariable", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("CAREERAI_SET", "value")
	t.Setenv("CAREERAI_EMPTY", "")

	tests := []struct {
		in, want string
	}{
		{"a: ${CAREERAI_SET}", "a: value"},
		{"a: ${CAREERAI_UNSET_X:-fallback}", "a: fallback"},
		{"a: ${CAREERAI_UNSET_X:-}", "a: "},
		{"a: ${CAREERAI_EMPTY:-fallback}", "a: "},
		{"a: plain", "a: plain"},
	}
	for _, tt := range tests {
		got, err := expandEnv([]byte(tt.in))
		if err != nil {
			t.Errorf("expandEnv(%q): %v", tt.in, err)
			continue
		}
		if string(got) != tt.want {
			t.Errorf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(t.TempDir())

	if _, err := ResolvePath(); !errors.Is(err, ErrNoConfigFile) {
		t.Fatalf("err = %v, want ErrNoConfigFile", err)
	}

	want := filepath.Join(dir, "careerai", FileName)
	if err := os.MkdirAll(filepath.Dir(want), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(want, []byte("version: \"1\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := ResolvePath()
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestResolve_LoadOrder(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte("version: \"1\"\nmodules:\n  reload.extra: {}\n  gateway.http: {}\n  provider.openrouter: {}\n  store.sqlite: {}\n  provider.backup: {}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ids := Resolve(cfg)
	want := []string{"store.sqlite", "provider.backup", "provider.openrouter", "gateway.http", "reload.extra"}
	if !slices.Equal(ids, want) {
		t.Fatalf("Resolve = %v, want %v", ids, want)
	}
}
