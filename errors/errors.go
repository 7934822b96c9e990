package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotFound indicates a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrSessionNotFound indicates a turn or lookup referenced a session that was never created
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidContent indicates the conversation content document is missing or malformed
	ErrInvalidContent = errors.New("invalid conversation content")

	// ErrInvalidConfig indicates a startup configuration value is unusable
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrServiceUnavailable indicates a required service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidCredential indicates the remote generator rejected our credential
	ErrInvalidCredential = errors.New("invalid remote credential")

	// ErrRateLimited indicates the remote generator throttled the request
	ErrRateLimited = errors.New("remote generator rate limited")

	// ErrUnavailable covers every other remote failure (network, timeout, 5xx, empty output)
	ErrUnavailable = fmt.Errorf("remote generator %w", ErrServiceUnavailable)
)

// RemoteError is the classified failure returned by the remote generator.
// Kind is one of ErrInvalidCredential, ErrRateLimited or ErrUnavailable.
type RemoteError struct {
	Kind       error
	StatusCode int
	Attempts   int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v (attempts=%d)", e.Kind, e.Attempts)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%v (status=%d, attempts=%d): %v", e.Kind, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%v (attempts=%d): %v", e.Kind, e.Attempts, e.Err)
}

func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RemoteKind returns a short label for the remote failure class, for logs and metrics.
func RemoteKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "unavailable"
	}
}

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSessionNotFound checks if error is a missing session error
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsServiceUnavailable checks if error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

// IsInvalidCredential checks if error is a rejected credential error
func IsInvalidCredential(err error) bool {
	return errors.Is(err, ErrInvalidCredential)
}

// IsRateLimited checks if error is a throttling error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
