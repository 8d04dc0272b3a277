// Package errors holds the sentinel errors shared by every access package.
// Use cases tag failures with them and the HTTP layer turns each into a
// status code, so callers test with Is rather than comparing strings.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized marks a missing, expired or revoked credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks an authenticated subject the policy turned away.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable marks an identity provider or store that did not answer.
	ErrUnavailable = errors.New("unavailable")
)

func New(message string) error { return errors.New(message) }

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	return Wrapf(err, "%s", message)
}

// Wrapf prefixes err with a formatted message. A nil err stays nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
