// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"time"

	jderrors "jobdash/cli/internal/errors"
)

// Outcome is the result of one Run: exactly one of Success, Rejected or Failure.
// The interface is sealed; use Visit to handle all three.
type Outcome interface {
	// Visit calls the Visitor method matching the concrete outcome.
	Visit(v Visitor)
	isOutcome()
}

// Visitor handles every kind of Outcome. Implementations cannot forget a case.
type Visitor interface {
	Success(Success)
	Rejected(Rejected)
	Failure(Failure)
}

// Success carries the materialized result set.
type Success struct {
	Result  Result
	Elapsed time.Duration
}

// Rejected means free-form input failed the read-only check. The database was not contacted.
type Rejected struct {
	Reason string
}

// Failure means the database reported an error or no connection could be obtained.
type Failure struct {
	// Kind is errors.Connection or errors.Database.
	Kind jderrors.Kind
	// Err is the driver error; its text is the diagnostic shown to the user.
	Err error
}

func (s Success) Visit(v Visitor)  { v.Success(s) }
func (r Rejected) Visit(v Visitor) { v.Rejected(r) }
func (f Failure) Visit(v Visitor)  { v.Failure(f) }

func (Success) isOutcome()  {}
func (Rejected) isOutcome() {}
func (Failure) isOutcome()  {}

// Message is the driver's diagnostic text.
func (f Failure) Message() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return f.Err.Error()
}

// Error lets a Failure be returned where an error is expected.
func (f Failure) Error() string { return f.Message() }

// Unwrap exposes the driver error.
func (f Failure) Unwrap() error { return f.Err }

// AsError converts non-success outcomes to an *errors.E, and Success to nil.
func AsError(o Outcome) error {
	switch v := o.(type) {
	case Rejected:
		return jderrors.New(jderrors.ValidationRejected, v.Reason)
	case Failure:
		return jderrors.Wrap(v.Kind, "query failed", v.Err)
	}
	return nil
}
