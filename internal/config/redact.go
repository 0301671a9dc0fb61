package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/careerai/internal/security"
)

// Redacted returns cfg as a generic map with secret values replaced, for
// display by `config check` and the admin API.
func Redacted(cfg *Config, r *security.Redactor) (map[string]any, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: encoding: %w", err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if r == nil {
		r = security.NewRedactor()
	}
	r.RedactMap(generic)
	return generic, nil
}
