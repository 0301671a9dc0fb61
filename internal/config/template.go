package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TemplateParams are the answers collected by `careerai config init`.
type TemplateParams struct {
	// APIKeyEnv is the environment variable holding the OpenRouter key.
	APIKeyEnv string
	Model     string
	Bind      string

	// BearerEnv, when set, protects the API with a bearer token read from
	// this environment variable.
	BearerEnv string

	// RetentionDays deletes idle conversations after this many days.
	// Zero keeps them forever.
	RetentionDays int

	MessagesPerMin  int
	MessagesPerHour int
}

// Template renders a starter configuration file from p.
func Template(p TemplateParams) ([]byte, error) {
	if p.APIKeyEnv == "" {
		p.APIKeyEnv = "OPENROUTER_API_KEY"
	}
	if p.Model == "" {
		p.Model = "auto"
	}
	if p.Bind == "" {
		p.Bind = "127.0.0.1:8080"
	}

	gateway := map[string]any{"bind": p.Bind}
	if p.BearerEnv != "" {
		gateway["auth"] = map[string]any{"bearer_token": "${" + p.BearerEnv + "}"}
	}

	doc := map[string]any{
		"version": "1",
		"modules": map[string]any{
			"provider.openrouter": map[string]any{
				"api_key": "${" + p.APIKeyEnv + "}",
				"model":   p.Model,
			},
			"store.sqlite": map[string]any{},
			"gateway.http": gateway,
		},
	}

	security := map[string]any{}
	if p.MessagesPerMin > 0 || p.MessagesPerHour > 0 {
		security["rate_limit"] = map[string]any{
			"messages_per_min":  p.MessagesPerMin,
			"messages_per_hour": p.MessagesPerHour,
		}
	}
	security["guardrails"] = map[string]any{"mask_contact_info": true}
	doc["security"] = security

	if p.RetentionDays > 0 {
		doc["retention"] = map[string]any{"max_age": fmt.Sprintf("%dh", p.RetentionDays*24)}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("config: rendering template: %w", err)
	}
	return out, nil
}
