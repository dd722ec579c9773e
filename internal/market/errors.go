package market

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no provider returned data for the asset.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientData means data exists but too little of it for
	// the requested computation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidInput means the request itself is malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFound wraps ErrNotFound with a user-facing message and the
// underlying provider error.
func NotFound(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return &notFoundError{msg: msg, cause: cause}
}

type notFoundError struct {
	msg   string
	cause error
}

func (e *notFoundError) Error() string   { return e.msg }
func (e *notFoundError) Unwrap() []error { return []error{ErrNotFound, e.cause} }

// Insufficient wraps ErrInsufficientData.
func Insufficient(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

// Invalid wraps ErrInvalidInput.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
