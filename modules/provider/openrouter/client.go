package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/flemzord/careerai/internal/provider"
)

// apiRequest is the OpenAI-compatible chat completion request body.
type apiRequest struct {
	Model            string       `json:"model"`
	Messages         []apiMessage `json:"messages"`
	MaxTokens        int          `json:"max_tokens,omitempty"`
	Temperature      *float64     `json:"temperature,omitempty"`
	TopP             *float64     `json:"top_p,omitempty"`
	FrequencyPenalty *float64     `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64     `json:"presence_penalty,omitempty"`
	Stop             []string     `json:"stop,omitempty"`
	Stream           bool         `json:"stream"`
}

// apiMessage is an OpenAI-compatible chat message.
type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiResponse is the non-streaming OpenAI-compatible response.
type apiResponse struct {
	Choices []apiChoice  `json:"choices"`
	Usage   apiUsage     `json:"usage"`
	Error   apiErrorBody `json:"error,omitempty"`
}

// apiChoice is a single choice in a completion response.
type apiChoice struct {
	Message      apiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

// apiStreamChunk is a single chunk in a streaming response.
type apiStreamChunk struct {
	Choices []apiStreamChoice `json:"choices"`
	Usage   *apiUsage         `json:"usage,omitempty"`
	Error   apiErrorBody      `json:"error,omitempty"`
}

// apiStreamChoice is a choice within a streaming chunk.
type apiStreamChoice struct {
	Delta struct {
		Content string `json:"content,omitempty"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

// apiUsage holds token consumption data.
type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends a non-streaming completion request to OpenRouter.
func (o *OpenRouter) Complete(ctx context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	resp, err := o.doRequest(ctx, o.buildRequest(req, false))
	if err != nil {
		return provider.CompletionResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return provider.CompletionResponse{}, o.rotateKey(mapHTTPError(resp.StatusCode, resp.Body))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return provider.CompletionResponse{}, fmt.Errorf("openrouter: decoding response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return provider.CompletionResponse{}, mapAPIError(apiError{Error: apiResp.Error})
	}

	return convertResponse(apiResp), nil
}

// Stream sends a streaming completion request to OpenRouter.
// Connection errors are returned directly. Mid-stream errors are
// delivered via StreamChunk.Err on the returned channel.
func (o *OpenRouter) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamChunk, error) {
	resp, err := o.doRequest(ctx, o.buildRequest(req, true))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, o.rotateKey(mapHTTPError(resp.StatusCode, resp.Body))
	}

	ch := make(chan provider.StreamChunk, 8)
	go func() {
		defer func() { _ = resp.Body.Close() }()
		defer close(ch)
		parseSSE(ctx, resp.Body, ch)
	}()

	return ch, nil
}

// ContextWindowSize returns the context window size for the configured model.
// Config override takes precedence over the built-in lookup table.
func (o *OpenRouter) ContextWindowSize() int {
	if o.config.ContextWindow > 0 {
		return o.config.ContextWindow
	}
	return lookupContextWindow(o.config.resolvedModel())
}

// ModelName returns the resolved model identifier.
func (o *OpenRouter) ModelName() string {
	return o.config.resolvedModel()
}

// HealthCheck performs an active health probe by sending a minimal
// completion request (max_tokens=1) to verify connectivity.
func (o *OpenRouter) HealthCheck(ctx context.Context) error {
	_, err := o.Complete(ctx, provider.CompletionRequest{
		Messages:  []provider.LLMMessage{{Role: provider.MessageRoleUser, Content: "ping"}},
		MaxTokens: 1,
	})
	return err
}

// buildRequest converts a provider.CompletionRequest into an apiRequest.
func (o *OpenRouter) buildRequest(req provider.CompletionRequest, stream bool) apiRequest {
	return apiRequest{
		Model:            o.config.resolvedModel(),
		Messages:         convertMessages(req.Messages),
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Stop:             req.Stop,
		Stream:           stream,
	}
}

// doRequest sends an API request and returns the raw HTTP response.
func (o *OpenRouter) doRequest(ctx context.Context, apiReq apiRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter: marshaling request: %w", err)
	}

	url := o.config.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.currentKey())

	if o.config.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", o.config.Referer)
	}
	if o.config.Title != "" {
		httpReq.Header.Set("X-Title", o.config.Title)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("openrouter: sending request: %w", ctx.Err())
		}
		// Transport failures are retryable.
		return nil, fmt.Errorf("openrouter: sending request: %w: %w", provider.ErrProviderDown, err)
	}

	return resp, nil
}

func (o *OpenRouter) currentKey() string {
	if o.auth == nil {
		return o.config.APIKey
	}
	return o.auth.CurrentKey()
}

// rotateKey switches to the next API key when err is tied to the current
// one (throttled, rejected or out of credits).
func (o *OpenRouter) rotateKey(err error) error {
	if o.auth != nil && provider.IsKeyScoped(err) && o.auth.Rotate() && o.logger != nil {
		o.logger.Warn("api key unusable, rotated to the next one", "keys", o.auth.Len(), "error", err)
	}
	return err
}

// convertMessages converts provider messages to API messages.
func convertMessages(msgs []provider.LLMMessage) []apiMessage {
	out := make([]apiMessage, len(msgs))
	for i, m := range msgs {
		out[i] = apiMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// convertResponse converts an API response to a provider.CompletionResponse.
func convertResponse(resp apiResponse) provider.CompletionResponse {
	cr := provider.CompletionResponse{
		Usage: provider.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) == 0 {
		return cr
	}

	choice := resp.Choices[0]
	cr.Content = choice.Message.Content
	cr.FinishReason = mapFinishReason(choice.FinishReason)
	return cr
}
