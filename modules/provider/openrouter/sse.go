package openrouter

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/flemzord/careerai/internal/provider"
)

// sseMaxLineSize is the maximum SSE line size (512 KiB), above the default
// 64 KiB bufio.Scanner limit.
const sseMaxLineSize = 512 * 1024

// parseSSE reads an SSE stream from r and sends decoded chunks to ch.
// It handles OpenRouter keepalive comments, the [DONE] sentinel, and
// mid-stream error objects. It returns early when ctx is cancelled.
// The caller must close ch after parseSSE returns.
//
// Each data payload is assumed to fit on a single "data:" line, as with
// every OpenAI-compatible API.
func parseSSE(ctx context.Context, r io.Reader, ch chan<- provider.StreamChunk) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), sseMaxLineSize)

	send := func(sc provider.StreamChunk) bool {
		select {
		case ch <- sc:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Event separators and SSE comments carry no data.
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)

		if data == "[DONE]" {
			return
		}

		// OpenRouter keepalive: "data: : OPENROUTER PROCESSING"
		if strings.HasPrefix(data, ": OPENROUTER") || strings.HasPrefix(data, ":OPENROUTER") {
			continue
		}

		var chunk apiStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			send(provider.StreamChunk{Err: err})
			return
		}

		if chunk.Error.Message != "" {
			send(provider.StreamChunk{Err: mapAPIError(apiError{Error: chunk.Error})})
			return
		}

		var sc provider.StreamChunk
		if len(chunk.Choices) > 0 {
			choice := chunk.Choices[0]
			sc.Content = choice.Delta.Content
			if choice.FinishReason != "" {
				sc.FinishReason = mapFinishReason(choice.FinishReason)
			}
		}
		if chunk.Usage != nil {
			sc.Usage = &provider.TokenUsage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}
		if sc.Content == "" && sc.FinishReason == "" && sc.Usage == nil {
			continue
		}

		if !send(sc) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(provider.StreamChunk{Err: err})
	}
}

// mapFinishReason converts an OpenAI-compatible finish_reason string
// to a provider.FinishReason.
func mapFinishReason(reason string) provider.FinishReason {
	switch reason {
	case "length":
		return provider.FinishReasonLength
	case "content_filter":
		return provider.FinishReasonFiltering
	default:
		return provider.FinishReasonStop
	}
}
