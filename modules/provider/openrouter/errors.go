package openrouter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/flemzord/careerai/internal/provider"
)

// apiErrorBody is the error object OpenRouter embeds in error responses
// and in stream chunks.
type apiErrorBody struct {
	Message string `json:"message"`
	Code    any    `json:"code"` // Can be string or int depending on upstream.
}

// apiError represents an error response from the OpenRouter API.
type apiError struct {
	Error apiErrorBody `json:"error"`
}

// statusErrors maps upstream status codes to provider sentinels.
var statusErrors = map[int]error{
	http.StatusUnauthorized:    provider.ErrAuth,
	http.StatusForbidden:       provider.ErrAuth,
	http.StatusPaymentRequired: provider.ErrQuota,
	http.StatusRequestTimeout:  provider.ErrProviderDown,
	http.StatusTooManyRequests: provider.ErrRateLimit,
}

// mapHTTPError turns a non-2xx response into a wrapped provider error.
// Unmapped 4xx statuses are returned unwrapped: they are not retryable and
// not tied to the key.
func mapHTTPError(statusCode int, body io.Reader) error {
	var ae apiError
	if data, err := io.ReadAll(io.LimitReader(body, 4096)); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &ae)
	}
	msg := ae.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", statusCode)
	}

	sentinel, ok := statusErrors[statusCode]
	switch {
	case ok:
	case statusCode >= 500:
		sentinel = provider.ErrProviderDown
	case statusCode == http.StatusBadRequest && isContextLengthError(msg):
		sentinel = provider.ErrContextLength
	default:
		return fmt.Errorf("openrouter: %s", msg)
	}
	return fmt.Errorf("openrouter: %s: %w", msg, sentinel)
}

// mapAPIError converts an in-stream API error into a provider error.
func mapAPIError(ae apiError) error {
	msg := ae.Error.Message
	if msg == "" {
		msg = "unknown error"
	}

	lmsg := strings.ToLower(msg)
	switch {
	case strings.Contains(lmsg, "rate limit"):
		return fmt.Errorf("openrouter: %s: %w", msg, provider.ErrRateLimit)
	case isContextLengthError(msg):
		return fmt.Errorf("openrouter: %s: %w", msg, provider.ErrContextLength)
	default:
		return fmt.Errorf("openrouter: %s: %w", msg, provider.ErrProviderDown)
	}
}

// isContextLengthError checks whether an error message indicates a context
// length overflow.
func isContextLengthError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "context length") ||
		strings.Contains(lower, "context_length") ||
		strings.Contains(lower, "maximum context") ||
		strings.Contains(lower, "token limit")
}
