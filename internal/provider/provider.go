// Package provider defines the Provider interface for communicating with
// LLMs, the request and response types, and the errors providers map to.
package provider

import "context"

// Provider is the interface for communicating with an LLM.
// Concrete implementations live in separate packages (e.g., provider.openrouter)
// and typically also implement core.Module for lifecycle management.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Stream sends a completion request and returns a channel of chunks.
	// Initial connection errors are returned directly. Mid-stream errors
	// are delivered via StreamChunk.Err.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)

	// ContextWindowSize returns the maximum context window in tokens.
	ContextWindowSize() int

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface for providers that support an
// active probe. The gateway's health endpoint calls it when present.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Collect drains a stream into a single response. It stops at the first
// chunk carrying an error and returns the content gathered so far with it.
func Collect(ch <-chan StreamChunk) (CompletionResponse, error) {
	var resp CompletionResponse
	var content []byte
	for chunk := range ch {
		if chunk.Err != nil {
			resp.Content = string(content)
			return resp, chunk.Err
		}
		content = append(content, chunk.Content...)
		if chunk.FinishReason != "" {
			resp.FinishReason = chunk.FinishReason
		}
		if chunk.Usage != nil {
			resp.Usage = *chunk.Usage
		}
	}
	resp.Content = string(content)
	return resp, nil
}
