package message

import (
	"errors"
	"strings"
)

// Validation errors for inbound chat requests.
var (
	ErrEmptyMessage   = errors.New("message: message is required")
	ErrMissingStudent = errors.New("message: student_id is required")
)

// ChatRequest is one inbound chat turn.
type ChatRequest struct {
	// ConversationID is empty for the first turn of a new conversation.
	ConversationID string `json:"conversation_id,omitempty"`

	// StudentID identifies the caller. Rate limits and conversation
	// ownership are keyed by it.
	StudentID string `json:"student_id"`

	// Message is the raw user text.
	Message string `json:"message"`

	// SelectedChips are quick-reply chips the user clicked, used as
	// extra intent hints.
	SelectedChips []string `json:"selected_chips,omitempty"`
}

// Validate checks the structural requirements of the request.
func (r *ChatRequest) Validate() error {
	var errs []error
	if strings.TrimSpace(r.StudentID) == "" {
		errs = append(errs, ErrMissingStudent)
	}
	if strings.TrimSpace(r.Message) == "" {
		errs = append(errs, ErrEmptyMessage)
	}
	return errors.Join(errs...)
}

// IsNewConversation reports whether the request starts a new conversation.
func (r *ChatRequest) IsNewConversation() bool {
	return r.ConversationID == ""
}
