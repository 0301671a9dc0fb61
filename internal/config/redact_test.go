package config

import (
	"strings"
	"testing"

	"github.com/flemzord/careerai/internal/security"
)

func TestRedacted(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(`version: "1"
modules:
  provider.openrouter:
    api_key: sk-or-v1-0123456789abcdef
    model: auto
  gateway.http:
    auth:
      bearer_token: hunter2hunter2
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	m, err := Redacted(cfg, nil)
	if err != nil {
		t.Fatalf("Redacted: %v", err)
	}
	mods := m["modules"].(map[string]any)
	or := mods["provider.openrouter"].(map[string]any)
	if or["api_key"] != security.RedactPlaceholder {
		t.Errorf("api_key = %v", or["api_key"])
	}
	if or["model"] != "auto" {
		t.Errorf("model = %v, non-secret values must survive", or["model"])
	}
	auth := mods["gateway.http"].(map[string]any)["auth"].(map[string]any)
	if strings.Contains(auth["bearer_token"].(string), "hunter2") {
		t.Error("bearer token leaked")
	}
}
