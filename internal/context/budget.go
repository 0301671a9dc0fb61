package ctxengine

import (
	"github.com/flemzord/careerai/pkg/message"
)

// TokenEstimator estimates the token count of a string.
type TokenEstimator interface {
	Estimate(text string) int
}

// CharEstimator estimates tokens using a simple characters-per-token ratio.
// A ratio of ~4 works well for English; ~3 for other Latin languages.
type CharEstimator struct {
	CharsPerToken float64
}

// NewCharEstimator creates a CharEstimator with the given ratio.
// If charsPerToken is <= 0, defaults to 4.0.
func NewCharEstimator(charsPerToken float64) *CharEstimator {
	if charsPerToken <= 0 {
		charsPerToken = 4.0
	}
	return &CharEstimator{CharsPerToken: charsPerToken}
}

// Estimate returns the estimated token count for the given text.
func (e *CharEstimator) Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := float64(len(text)) / e.CharsPerToken
	// Always round up to avoid underestimation.
	return int(tokens) + 1
}

// ContextBudget tracks token allocation across prompt sections.
type ContextBudget struct {
	WindowSize int // total context window in tokens, 0 when unbounded
	System     int // system prompt without the memory block
	Memory     int // serialized conversation memory
	History    int // recent messages
	Reserved   int // reserved for model reply
}

// Used returns the total number of tokens consumed across all sections.
func (b ContextBudget) Used() int {
	return b.System + b.Memory + b.History + b.Reserved
}

// Available returns the number of tokens remaining for additional content.
// Returns 0 if the budget is already exceeded.
func (b ContextBudget) Available() int {
	avail := b.WindowSize - b.Used()
	if avail < 0 {
		return 0
	}
	return avail
}

// Exceeded reports whether total usage exceeds a bounded context window.
func (b ContextBudget) Exceeded() bool {
	return b.WindowSize > 0 && b.Used() > b.WindowSize
}

// EstimateMessages returns the total estimated tokens for a slice of messages.
func EstimateMessages(estimator TokenEstimator, messages []message.Message) int {
	total := 0
	for i := range messages {
		// Per-message overhead: role tokens + formatting (~4 tokens).
		total += 4 + estimator.Estimate(messages[i].Content)
	}
	return total
}
