package provider

import "sync"

// AuthProfile manages a set of API keys for a single provider,
// supporting rotation on rate limit errors.
type AuthProfile struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

// NewAuthProfile creates an AuthProfile with the given keys.
// Empty keys are ignored; at least one non-empty key is required.
func NewAuthProfile(keys ...string) (*AuthProfile, error) {
	var kept []string
	for _, k := range keys {
		if k != "" {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoKeys
	}
	return &AuthProfile{keys: kept}, nil
}

// CurrentKey returns the currently active API key.
func (a *AuthProfile) CurrentKey() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keys[a.idx]
}

// Rotate advances to the next key in the list, wrapping around.
// Returns true if rotation happened (i.e. more than one key exists).
func (a *AuthProfile) Rotate() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.keys) <= 1 {
		return false
	}
	a.idx = (a.idx + 1) % len(a.keys)
	return true
}

// Len returns the number of keys in the profile.
func (a *AuthProfile) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.keys)
}
