package metadata

import (
	"errors"
	"fmt"
	"strings"

	"cinelist/internal/retry"
)

var (
	ErrRateLimited       = errors.New("provider rate limit exceeded")
	ErrMalformedResponse = errors.New("malformed provider response")
	// ErrExhaustedRetries matches failures returned once the retry cap is hit.
	ErrExhaustedRetries = retry.ErrExhausted
)

// ProviderError is an explicit error reported in the response body. It is
// never retried.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return "provider error: " + e.Message
}

// NotFound reports whether the provider could not match the request.
func (e *ProviderError) NotFound() bool {
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "incorrect imdb id")
}

// RateLimitedError is returned for HTTP 429.
type RateLimitedError struct {
	RetryAfter string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("%v (retry after %s)", ErrRateLimited, e.RetryAfter)
	}
	return ErrRateLimited.Error()
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// TransportError covers network failures and 5xx responses.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return "transport error: " + e.Err.Error()
	}
	return fmt.Sprintf("transport error: provider returned status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-retryable HTTP status (4xx other than 429).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a provider-level "no match" error.
func IsNotFound(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.NotFound()
}

func isRetryable(err error) bool {
	var (
		te *TransportError
		re *RateLimitedError
	)
	return errors.As(err, &te) || errors.As(err, &re)
}
