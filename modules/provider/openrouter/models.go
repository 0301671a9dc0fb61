package openrouter

// defaultContextWindow is used when a model is not in the lookup table
// and no override is configured.
const defaultContextWindow = 128000

// contextWindows maps the models commonly used for career guidance to
// their maximum context window size in tokens.
var contextWindows = map[string]int{
	"openai/gpt-4o":                     128000,
	"openai/gpt-4o-mini":                128000,
	"openai/gpt-4.1-mini":               1047576,
	"anthropic/claude-3.5-haiku":        200000,
	"anthropic/claude-sonnet-4":         200000,
	"google/gemini-2.0-flash-001":       1048576,
	"meta-llama/llama-3.1-8b-instruct":  131072,
	"meta-llama/llama-3.1-70b-instruct": 131072,
	"mistralai/mistral-small":           32768,
	"openrouter/auto":                   128000,
}

// lookupContextWindow returns the context window size for the given model.
// If the model is not in the table, defaultContextWindow is returned.
func lookupContextWindow(model string) int {
	if size, ok := contextWindows[model]; ok {
		return size
	}
	return defaultContextWindow
}
