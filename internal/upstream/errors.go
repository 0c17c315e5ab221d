// Package upstream classifies provider call failures. The classification
// drives two decisions elsewhere: whether a stale cache entry may mask the
// failure, and which HTTP status the caller ultimately sees.
package upstream

import (
	"errors"
	"fmt"
)

// Kind discriminates why a provider call failed.
type Kind int

const (
	// KindTransport covers network errors, timeouts and unparseable bodies.
	KindTransport Kind = iota
	// KindStatus covers non-2xx upstream responses.
	KindStatus
	// KindSoft covers 2xx responses whose body carries an embedded error.
	KindSoft
	// KindRateLimited covers embedded rate-limit/quota notices.
	KindRateLimited
	// KindNotConfigured covers missing credentials. These surface immediately
	// and never trigger stale fallback: a broken setup should look different
	// from a flaky upstream.
	KindNotConfigured
)

// Error is a typed provider failure.
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int    // upstream HTTP status when known, 0 otherwise
	Message    string // safe to surface to API callers
	Err        error  // underlying cause, logged but never surfaced
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport wraps a network or timeout failure.
func Transport(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindTransport, Message: "request failed", Err: err}
}

// Decode wraps an unparseable upstream body.
func Decode(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindTransport, Message: "failed to decode response", Err: err}
}

// Status reports a non-2xx upstream response.
func Status(provider string, code int) *Error {
	return &Error{
		Provider:   provider,
		Kind:       KindStatus,
		StatusCode: code,
		Message:    fmt.Sprintf("unexpected status %d", code),
	}
}

// Soft reports a 2xx response whose body is semantically an error.
func Soft(provider, message string) *Error {
	return &Error{Provider: provider, Kind: KindSoft, Message: message}
}

// RateLimited reports an embedded rate-limit or quota notice.
func RateLimited(provider, message string) *Error {
	return &Error{Provider: provider, Kind: KindRateLimited, Message: message}
}

// NotConfigured reports a missing credential, named by its environment
// variable so operators can tell broken setup apart from upstream trouble.
func NotConfigured(provider, envVar string) *Error {
	return &Error{
		Provider: provider,
		Kind:     KindNotConfigured,
		Message:  fmt.Sprintf("%s is not configured", envVar),
	}
}

// IsNotConfigured reports whether err is a missing-credential failure.
func IsNotConfigured(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotConfigured
}

// IsRateLimited reports whether err is an embedded rate-limit notice.
func IsRateLimited(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindRateLimited
}
