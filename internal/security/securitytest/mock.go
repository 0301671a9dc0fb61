// Package securitytest provides test doubles for the security package.
package securitytest

import (
	"slices"
	"sync"

	"github.com/flemzord/careerai/internal/security"
)

// NewTestAuditLogger creates an AuditLogger that records events in memory.
// The returned function yields a snapshot of the events logged so far.
func NewTestAuditLogger() (*security.AuditLogger, func() []security.AuditEvent) {
	var (
		mu     sync.Mutex
		events []security.AuditEvent
	)
	logger := security.NewAuditLogger(security.AuditLoggerConfig{
		OnEvent: func(e security.AuditEvent) {
			mu.Lock()
			events = append(events, e)
			mu.Unlock()
		},
	})
	return logger, func() []security.AuditEvent {
		mu.Lock()
		defer mu.Unlock()
		return slices.Clone(events)
	}
}

// NewGuardrails returns guardrails with the default configuration.
func NewGuardrails() *security.Guardrails {
	g, err := security.NewGuardrails(security.GuardrailConfig{})
	if err != nil {
		panic("securitytest: default guardrails: " + err.Error())
	}
	return g
}
