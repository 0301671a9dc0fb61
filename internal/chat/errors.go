package chat

import "errors"

// Sentinel errors returned by Handler.
var (
	// ErrInvalidRequest wraps structural and sanitization failures.
	ErrInvalidRequest = errors.New("chat: invalid request")

	// ErrForbidden is returned when a student addresses a conversation
	// that belongs to someone else.
	ErrForbidden = errors.New("chat: conversation belongs to another student")

	// ErrModel wraps a provider failure that survived all retries.
	ErrModel = errors.New("chat: model request failed")
)
