package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested plant does not exist.
	ErrNotFound = errors.New("plant not found")

	// ErrNotModified is returned when an update matched no record or
	// changed nothing.
	ErrNotModified = errors.New("plant not modified")
)

// StatusError is returned for any non-2xx response other than auth failures.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	err        error
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d on %s %s", e.StatusCode, e.Method, e.Path)
	}
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}

func (e *StatusError) Unwrap() error { return e.err }

// AuthError indicates that the session token was rejected.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth error (%d): sign in again", e.StatusCode)
	}
	return fmt.Sprintf("auth error (%d): %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
