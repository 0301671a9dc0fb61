package chat

import (
	"context"
	"fmt"

	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/pkg/message"
)

// Transcript is a stored conversation with its messages.
type Transcript struct {
	memory.Conversation
	Messages []message.Message `json:"messages"`
}

// Conversation loads a conversation and its messages. A non-empty
// studentID must own the conversation.
func (h *Handler) Conversation(ctx context.Context, id, studentID string) (Transcript, error) {
	conv, err := h.owned(ctx, id, studentID)
	if err != nil {
		return Transcript{}, err
	}
	msgs, err := h.store.Messages(ctx, id)
	if err != nil {
		return Transcript{}, fmt.Errorf("loading history: %w", err)
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return Transcript{Conversation: conv, Messages: msgs}, nil
}

// DeleteConversation removes a conversation. A non-empty studentID must
// own the conversation.
func (h *Handler) DeleteConversation(ctx context.Context, id, studentID string) error {
	conv, err := h.owned(ctx, id, studentID)
	if err != nil {
		return err
	}
	if err := h.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	h.audit.Log(security.AuditEvent{
		Type:           security.EventConversationDelete,
		StudentID:      conv.StudentID,
		ConversationID: id,
	})
	return nil
}

func (h *Handler) owned(ctx context.Context, id, studentID string) (memory.Conversation, error) {
	conv, err := h.store.Get(ctx, id)
	if err != nil {
		return memory.Conversation{}, err
	}
	if studentID != "" && conv.StudentID != studentID {
		return memory.Conversation{}, ErrForbidden
	}
	return conv, nil
}
