package provider

import "errors"

// Sentinel errors returned by providers, wrapped with the upstream message.
var (
	// ErrRateLimit: the upstream throttled the request.
	ErrRateLimit = errors.New("provider: rate limited")

	// ErrContextLength: the prompt does not fit the model's context window.
	ErrContextLength = errors.New("provider: context length exceeded")

	// ErrProviderDown: the upstream failed or timed out.
	ErrProviderDown = errors.New("provider: unavailable")

	// ErrAuth: the API key was rejected.
	ErrAuth = errors.New("provider: credentials rejected")

	// ErrQuota: the account behind the API key is out of credits.
	ErrQuota = errors.New("provider: quota exhausted")

	// ErrNoKeys is returned when NewAuthProfile is called without any keys.
	ErrNoKeys = errors.New("provider: auth profile requires at least one key")
)

// IsRetryable reports whether the same request may succeed after a delay.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrProviderDown)
}

// IsKeyScoped reports whether err is tied to the API key in use, so that
// switching to another configured key may help.
func IsKeyScoped(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrAuth) || errors.Is(err, ErrQuota)
}
