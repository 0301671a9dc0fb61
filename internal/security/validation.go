package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Validation limits.
const (
	DefaultMaxBodySize  = 64 << 10 // 64 KiB: a chat request plus chips
	DefaultMaxJSONDepth = 8
)

// Validation errors.
var (
	ErrBodyTooLarge = errors.New("security: request body exceeds maximum size")
	ErrJSONTooDeep  = errors.New("security: JSON nesting exceeds maximum depth")
	ErrInvalidJSON  = errors.New("security: invalid JSON")
	ErrEmptyInput   = errors.New("security: message is empty after sanitization")
)

// ValidateBodySize checks that data does not exceed limit bytes.
// If limit is <= 0, DefaultMaxBodySize is used.
func ValidateBodySize(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrBodyTooLarge, len(data), limit)
	}
	return nil
}

// ValidateJSONDepth checks that the JSON in data does not nest deeper
// than limit levels. If limit is <= 0, DefaultMaxJSONDepth is used.
func ValidateJSONDepth(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxJSONDepth
	}
	if len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}

		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
			if depth > limit {
				return fmt.Errorf("%w: depth %d (max %d)", ErrJSONTooDeep, depth, limit)
			}
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
}

// SanitizeInput normalizes a student message before any pattern matching:
// NFKC folding (so full-width or ligature look-alikes match ASCII
// patterns), control characters removed except newline and tab, runs of
// blank lines collapsed, and surrounding whitespace trimmed.
func SanitizeInput(s string) (string, error) {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	newlines := 0
	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			newlines++
			if newlines > 2 {
				continue
			}
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) && r != '\t' {
			continue
		}
		// Zero-width and bidi formatting characters hide payloads.
		if unicode.Is(unicode.Cf, r) {
			continue
		}
		newlines = 0
		b.WriteRune(r)
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyInput
	}
	return out, nil
}
