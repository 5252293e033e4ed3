// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure jobdash can produce falls into one of four kinds: configuration problems
// that abort startup, connection problems that survive one reconnect attempt, free-form
// input rejected before reaching the database, and errors reported by the database itself.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// so callers can branch on the kind with KindOf and still reach the driver error with
// the standard errors.As.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Configuration indicates missing or invalid connection parameters. Fatal at startup.
	Configuration Kind = "configuration_error"
	// Connection indicates the database session could not be obtained.
	Connection Kind = "connection_error"
	// ValidationRejected indicates free-form input failed the read-only check.
	ValidationRejected Kind = "validation_rejected"
	// Database indicates a failure reported by the driver while executing a statement.
	Database Kind = "database_error"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
