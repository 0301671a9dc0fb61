// Package memory provides conversation history storage and the entity
// memory rebuilt from a conversation on every turn.
package memory

import (
	"context"
	"errors"
	"time"

	"github.com/flemzord/careerai/pkg/message"
)

// ErrConversationNotFound is returned when a conversation ID is unknown.
var ErrConversationNotFound = errors.New("memory: conversation not found")

// ErrConversationExists is returned by Create for a duplicate ID.
var ErrConversationExists = errors.New("memory: conversation already exists")

// Conversation is the metadata of a stored conversation.
type Conversation struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryStore persists conversations and their ordered messages.
// Messages are append-only. Implementations must be safe for concurrent use.
type HistoryStore interface {
	// Create registers a new conversation.
	Create(ctx context.Context, conv Conversation) error

	// Get returns the conversation metadata.
	Get(ctx context.Context, id string) (Conversation, error)

	// Append adds messages to the end of a conversation.
	Append(ctx context.Context, conversationID string, msgs ...message.Message) error

	// Messages returns the full history of a conversation, oldest first.
	Messages(ctx context.Context, conversationID string) ([]message.Message, error)

	// Len returns the number of messages stored for a conversation.
	Len(ctx context.Context, conversationID string) (int, error)

	// Delete removes a conversation and its messages.
	Delete(ctx context.Context, id string) error

	// PurgeBefore deletes conversations not updated since cutoff and
	// reports how many were removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}
