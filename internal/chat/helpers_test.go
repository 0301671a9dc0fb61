package chat_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/flemzord/careerai/internal/chat"
	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/internal/provider/providertest"
	"github.com/flemzord/careerai/pkg/message"
)

type fixture struct {
	handler  *chat.Handler
	store    *memory.InMemoryHistoryStore
	provider *providertest.MockProvider
}

// newFixture builds a handler over an in-memory store. mutate may adjust
// the dependencies before the handler is created.
func newFixture(t *testing.T, mock *providertest.MockProvider, mutate func(*chat.Deps)) fixture {
	t.Helper()
	store := memory.NewInMemoryHistoryStore()
	d := chat.Deps{
		Store:    store,
		Provider: mock,
		Config:   chat.Config{RetryDelay: time.Millisecond},
	}
	if mutate != nil {
		mutate(&d)
	}
	h, err := chat.New(d)
	if err != nil {
		t.Fatalf("chat.New: %v", err)
	}
	return fixture{handler: h, store: store, provider: mock}
}

// seed stores a conversation with n alternating messages.
func seed(t *testing.T, store memory.HistoryStore, id, student string, n int) {
	t.Helper()
	ctx := context.Background()
	if err := store.Create(ctx, memory.Conversation{ID: id, StudentID: student, Title: "seeded"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := range n {
		var m message.Message
		if i%2 == 0 {
			m = message.NewUser(fmt.Sprintf("I want to become a data analyst and learn SQL, question %d", i))
		} else {
			m = message.NewAssistant(fmt.Sprintf("Here is some advice about SQL and Python, answer %d", i))
		}
		if err := store.Append(ctx, id, m); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
}
