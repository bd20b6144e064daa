// Package apperr holds the error taxonomy shared by the session store, the
// gateway client and the dashboards.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth covers invalid credentials and expired or revoked tokens.
	ErrAuth = errors.New("authentication failed")
	// ErrValidation covers missing or malformed input, detected before or by the backend.
	ErrValidation = errors.New("validation failed")
	// ErrNetwork covers transport failures and backend outages.
	ErrNetwork = errors.New("backend unreachable")
	// ErrAuthorization means the role may not use the requested view or action.
	ErrAuthorization = errors.New("not permitted")
	// ErrNotFound means the backend has no such resource.
	ErrNotFound = errors.New("not found")
)

// Error carries a user visible message next to its taxonomy kind.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return e.Kind.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation builds a validation error with a message.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds an authorization error with a message.
func Forbidden(format string, args ...any) error {
	return &Error{Kind: ErrAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Network wraps a transport failure.
func Network(err error) error {
	return &Error{Kind: ErrNetwork, Err: err}
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch {
	case errors.Is(err, ErrAuth):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrNetwork):
		return "Could not reach the server. Please try again."
	case errors.Is(err, ErrAuthorization):
		return "You do not have access to this page."
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	}
	return err.Error()
}
