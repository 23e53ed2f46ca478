package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotInitialized = errors.New("not initialized")
	ErrUpstream       = errors.New("upstream failure")
	ErrConfig         = errors.New("configuration error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// Unauthorized covers every authentication failure: missing cookie,
// malformed token, bad signature, wrong issuer or audience, expired.
// Callers never need to distinguish the sub-reasons — they all mean
// "re-authenticate".
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NotInitialized reports a generate call against a user record that was
// never initialized by a completed login.
func NotInitialized(githubID int64) *AppError {
	return &AppError{
		Err:     ErrNotInitialized,
		Message: fmt.Sprintf("user %d has not completed login", githubID),
	}
}

// Upstream wraps a failure from an external collaborator (GitHub search,
// text generation). The cause is preserved for logging; the message is safe
// to return to clients.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, cause),
		Message: message,
	}
}

// Config reports missing required configuration at the point of use.
func Config(message string) *AppError {
	return &AppError{
		Err:     ErrConfig,
		Message: message,
	}
}
