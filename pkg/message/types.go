// Package message defines the conversation data contract shared by the
// engine, the conversation store, and the gateway.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser is a message written by the student.
	RoleUser Role = "user"
	// RoleAssistant is a reply produced by the model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single stored turn of a conversation. Messages are ordered,
// append-only, and never modified after they are stored.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a message with a fresh ID, stamped with the current UTC time.
func New(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUser creates a user message.
func NewUser(content string) Message {
	return New(RoleUser, content)
}

// NewAssistant creates an assistant message.
func NewAssistant(content string) Message {
	return New(RoleAssistant, content)
}

// IsUser reports whether the message was authored by the student.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}
