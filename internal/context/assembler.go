package ctxengine

import (
	"strings"

	"github.com/flemzord/careerai/pkg/message"
)

// AssemblyRequest contains the inputs for context assembly.
type AssemblyRequest struct {
	// SystemParts are the components of the system prompt.
	SystemParts []string

	// History is the stored conversation, excluding the current user message.
	History []message.Message
}

// AssemblyResult is the output of context assembly.
type AssemblyResult struct {
	// SystemPrompt is the system prompt with the memory block appended.
	SystemPrompt string

	// Messages is the windowed, possibly trimmed, history.
	Messages []message.Message

	// MemoryBlock is the serialized memory, "" when not compressed or empty.
	MemoryBlock string

	// Memory is the compressed view, set only when Compressed is true.
	Memory CompressedContext

	// Budget is the final token budget breakdown.
	Budget ContextBudget

	// Compressed is true when the history exceeded the window.
	Compressed bool
}

// Assembler builds the context for one turn.
type Assembler struct {
	estimator  TokenEstimator
	compressor *Compressor
	config     Config
}

// NewAssembler creates an Assembler. A nil estimator selects a CharEstimator
// using cfg.CharsPerToken; a nil compressor selects one built from cfg.
func NewAssembler(estimator TokenEstimator, compressor *Compressor, cfg Config) *Assembler {
	cfg = cfg.withDefaults()
	if estimator == nil {
		estimator = NewCharEstimator(cfg.CharsPerToken)
	}
	if compressor == nil {
		compressor = NewCompressor(NewSummarizer(nil, cfg), nil, cfg)
	}
	return &Assembler{estimator: estimator, compressor: compressor, config: cfg}
}

// Assemble builds the turn context.
//
// The assembly process:
//  1. Histories longer than the window are compressed and the memory block
//     is appended to the system prompt
//  2. Shorter histories are sent verbatim without a memory block
//  3. When MaxContextTokens is set, the oldest recent messages are dropped
//     until the prompt fits, keeping at least one
func (a *Assembler) Assemble(req AssemblyRequest) AssemblyResult {
	systemPrompt := strings.Join(req.SystemParts, "\n\n")
	budget := ContextBudget{
		WindowSize: a.config.MaxContextTokens,
		System:     a.estimator.Estimate(systemPrompt),
	}
	if a.config.MaxContextTokens > 0 {
		budget.Reserved = a.config.ReservedForReply
	}

	result := AssemblyResult{Messages: req.History}
	if len(req.History) > a.config.Window {
		cc := a.compressor.CompressWindow(req.History, a.config.Window)
		result.Compressed = true
		result.Memory = cc
		result.Messages = cc.RecentMessages
		result.MemoryBlock = SerializeMemory(cc)
		if result.MemoryBlock != "" {
			systemPrompt += "\n\n" + result.MemoryBlock
			budget.Memory = a.estimator.Estimate(result.MemoryBlock)
		}
	}

	if a.config.MaxContextTokens > 0 {
		limit := a.config.MaxContextTokens - budget.System - budget.Memory - budget.Reserved
		result.Messages = a.trimHistory(result.Messages, limit)
	}
	budget.History = EstimateMessages(a.estimator, result.Messages)

	result.SystemPrompt = systemPrompt
	result.Budget = budget
	return result
}

// trimHistory removes the oldest messages until the history fits within
// the token budget. The latest message is always kept.
func (a *Assembler) trimHistory(history []message.Message, budget int) []message.Message {
	start := 0
	for start < len(history)-1 && EstimateMessages(a.estimator, history[start:]) > budget {
		start++
	}
	return history[start:]
}

// Window returns the configured recent-message window.
func (a *Assembler) Window() int {
	return a.config.Window
}
