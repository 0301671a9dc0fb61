package ctxengine

import (
	"slices"

	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/pkg/message"
)

// CompressedContext is the derived view of a history sent to the model.
type CompressedContext struct {
	RecentMessages   []message.Message   `json:"recent_messages"`
	MemorySummary    string              `json:"memory_summary"`
	RelevantEntities memory.EntityMemory `json:"relevant_entities"`
}

// Compressor splits a history into a recent window and a summarized past.
type Compressor struct {
	summarizer *Summarizer
	extractor  *memory.EntityExtractor
	window     int
}

// NewCompressor creates a Compressor. Nil arguments select the defaults.
func NewCompressor(s *Summarizer, x *memory.EntityExtractor, cfg Config) *Compressor {
	if s == nil {
		s = defaultSummarizer
	}
	if x == nil {
		x = memory.NewEntityExtractor(nil)
	}
	return &Compressor{summarizer: s, extractor: x, window: cfg.withDefaults().Window}
}

var defaultCompressor = NewCompressor(nil, nil, Config{})

// Compress runs the default compressor with the given window.
func Compress(all []message.Message, window int) CompressedContext {
	return defaultCompressor.CompressWindow(all, window)
}

// Compress uses the window the Compressor was configured with.
func (c *Compressor) Compress(all []message.Message) CompressedContext {
	return c.CompressWindow(all, c.window)
}

// CompressWindow keeps the last window messages verbatim and summarizes
// the rest. Entities are extracted from the full history. A window <= 0
// selects DefaultWindow. The returned slice never aliases all.
func (c *Compressor) CompressWindow(all []message.Message, window int) CompressedContext {
	if window <= 0 {
		window = DefaultWindow
	}

	split := max(len(all)-window, 0)
	older := all[:split]

	return CompressedContext{
		RecentMessages:   slices.Clone(all[split:]),
		MemorySummary:    c.summarizer.Summarize(older),
		RelevantEntities: c.extractor.Extract(all),
	}
}
