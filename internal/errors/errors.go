// Package errors provides the sentinel errors shared by every domain package.
// Domain packages wrap these sentinels so callers can branch on intent
// (not found, invalid, unauthorized) without knowing which component failed.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the resource already exists.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the caller could not prove who it is.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is known but not allowed to proceed.
	ErrForbidden = errors.New("forbidden")

	// ErrMisconfigured indicates required configuration is missing or unsafe.
	ErrMisconfigured = errors.New("misconfigured")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
