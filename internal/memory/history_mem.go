package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/flemzord/careerai/pkg/message"
)

type conversationData struct {
	meta     Conversation
	messages []message.Message
}

// InMemoryHistoryStore is a thread-safe, in-memory implementation of HistoryStore.
type InMemoryHistoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversationData
	now           func() time.Time
}

// NewInMemoryHistoryStore creates a new empty history store.
func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		conversations: make(map[string]*conversationData),
		now:           time.Now,
	}
}

// Compile-time interface check.
var _ HistoryStore = (*InMemoryHistoryStore)(nil)

// Create registers a new conversation.
func (s *InMemoryHistoryStore) Create(_ context.Context, conv Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conv.ID]; ok {
		return ErrConversationExists
	}
	now := s.now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}
	s.conversations[conv.ID] = &conversationData{meta: conv}
	return nil
}

// Get returns the conversation metadata.
func (s *InMemoryHistoryStore) Get(_ context.Context, id string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cd, ok := s.conversations[id]
	if !ok {
		return Conversation{}, ErrConversationNotFound
	}
	return cd.meta, nil
}

// Append adds messages to the end of a conversation.
func (s *InMemoryHistoryStore) Append(_ context.Context, conversationID string, msgs ...message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cd, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	cd.messages = append(cd.messages, msgs...)
	cd.meta.UpdatedAt = s.now().UTC()
	return nil
}

// Messages returns a copy of the conversation history.
func (s *InMemoryHistoryStore) Messages(_ context.Context, conversationID string) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cd, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return slices.Clone(cd.messages), nil
}

// Len returns the number of messages stored for a conversation.
func (s *InMemoryHistoryStore) Len(_ context.Context, conversationID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cd, ok := s.conversations[conversationID]
	if !ok {
		return 0, ErrConversationNotFound
	}
	return len(cd.messages), nil
}

// Delete removes a conversation and its messages.
func (s *InMemoryHistoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return ErrConversationNotFound
	}
	delete(s.conversations, id)
	return nil
}

// PurgeBefore deletes conversations whose last update is before cutoff.
func (s *InMemoryHistoryStore) PurgeBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, cd := range s.conversations {
		if cd.meta.UpdatedAt.Before(cutoff) {
			delete(s.conversations, id)
			n++
		}
	}
	return n, nil
}
