package ctxengine_test

import (
	"fmt"

	"github.com/flemzord/careerai/pkg/message"
)

// mockEstimator counts one token per byte.
type mockEstimator struct{}

func (mockEstimator) Estimate(text string) int { return len(text) }

// makeConversation returns n alternating user/assistant messages whose
// content includes the index.
func makeConversation(n int) []message.Message {
	msgs := make([]message.Message, n)
	for i := range n {
		if i%2 == 0 {
			msgs[i] = message.NewUser(fmt.Sprintf("question %d", i))
		} else {
			msgs[i] = message.NewAssistant(fmt.Sprintf("answer %d", i))
		}
	}
	return msgs
}
