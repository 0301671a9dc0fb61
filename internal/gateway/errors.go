package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flemzord/careerai/internal/chat"
	"github.com/flemzord/careerai/internal/memory"
	"github.com/flemzord/careerai/internal/security"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a chat error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrStudentMismatch):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, security.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded, please slow down"
	case errors.Is(err, chat.ErrInvalidRequest),
		errors.Is(err, security.ErrBodyTooLarge),
		errors.Is(err, security.ErrJSONTooDeep),
		errors.Is(err, security.ErrInvalidJSON):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, memory.ErrConversationNotFound), errors.Is(err, chat.ErrForbidden):
		return http.StatusNotFound, "conversation not found"
	case errors.Is(err, chat.ErrModel):
		return http.StatusBadGateway, "the assistant is unavailable, please try again"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
