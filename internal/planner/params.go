// Package planner turns a conversation phase and a detected intent into the
// generation parameters submitted to the model for one turn.
package planner

// Parameters are the sampling settings for a single completion.
type Parameters struct {
	MaxTokens        int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature      float64 `json:"temperature" yaml:"temperature"`
	TopP             float64 `json:"top_p" yaml:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty" yaml:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty" yaml:"presence_penalty"`
}

// AsMap flattens p for JSON echoes and logging.
func (p Parameters) AsMap() map[string]float64 {
	return map[string]float64{
		"max_tokens":        float64(p.MaxTokens),
		"temperature":       p.Temperature,
		"top_p":             p.TopP,
		"frequency_penalty": p.FrequencyPenalty,
		"presence_penalty":  p.PresencePenalty,
	}
}
