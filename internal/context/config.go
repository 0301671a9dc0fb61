// Package ctxengine compresses conversation history into a recent window
// plus a memory block, and assembles the prompt context for a turn.
package ctxengine

// DefaultWindow is the number of recent messages kept verbatim.
const DefaultWindow = 10

// Config holds the tuning knobs for the context engine.
type Config struct {
	// Window is the number of most recent messages sent verbatim.
	Window int `yaml:"window"`

	// MinSummaryMessages is the history length below which no summary is produced.
	MinSummaryMessages int `yaml:"min_summary_messages"`

	// QueryPreviewChars caps each user query quoted in the summary.
	QueryPreviewChars int `yaml:"query_preview_chars"`

	// RecentQueries is the number of user queries quoted in the summary.
	RecentQueries int `yaml:"recent_queries"`

	// MaxContextTokens caps the assembled prompt. 0 disables trimming.
	MaxContextTokens int `yaml:"max_context_tokens"`

	// ReservedForReply is subtracted from MaxContextTokens for the model's answer.
	ReservedForReply int `yaml:"reserved_for_reply"`

	// CharsPerToken drives the CharEstimator.
	CharsPerToken float64 `yaml:"chars_per_token"`
}

// withDefaults returns a copy of cfg with zero-valued fields replaced by
// defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MinSummaryMessages <= 0 {
		cfg.MinSummaryMessages = 5
	}
	if cfg.QueryPreviewChars <= 0 {
		cfg.QueryPreviewChars = 100
	}
	if cfg.RecentQueries <= 0 {
		cfg.RecentQueries = 3
	}
	if cfg.ReservedForReply <= 0 {
		cfg.ReservedForReply = 1024
	}
	if cfg.CharsPerToken <= 0 {
		cfg.CharsPerToken = 4.0
	}
	return cfg
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{}.withDefaults()
}
