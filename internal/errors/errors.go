// Package errors defines the categories every vault failure belongs to. Domain
// packages wrap one of these sentinels and handlers render by category.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: no such asset, blob or record.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a record with the same identity already exists.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput: the request is well formed but fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized: the caller could not be identified.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden: the caller is known but has no right to the resource,
	// e.g. a requester without a confirmed purchase.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest: the request is malformed, e.g. an unparsable content id.
	ErrBadRequest = errors.New("bad request")

	// ErrTooLarge: a payload exceeds a configured limit.
	ErrTooLarge = errors.New("too large")

	// ErrUnavailable: an upstream such as the payment ledger could not answer.
	ErrUnavailable = errors.New("unavailable")

	// ErrBadGateway: an upstream answered with unusable data.
	ErrBadGateway = errors.New("bad gateway")
)

// kinds is searched in order; the first sentinel found in a chain wins.
var kinds = []error{
	ErrNotFound,
	ErrConflict,
	ErrBadRequest,
	ErrInvalidInput,
	ErrTooLarge,
	ErrUnavailable,
	ErrBadGateway,
	ErrUnauthorized,
	ErrForbidden,
}

// Kind returns the category sentinel err wraps, or nil for uncategorized errors.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// New returns an uncategorized error with message.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message and keeps it in the chain. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
