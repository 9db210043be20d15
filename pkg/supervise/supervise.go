// Package supervise classifies pipeline failures into recovery decisions.
//
// Malformed input lines and per-record creation rejections are expected,
// recoverable conditions: the failing item is dropped and the run continues.
// Any other failure indicates the run itself is unhealthy and terminates it
// rather than silently losing data while appearing to succeed.
package supervise

import (
	"errors"
	"fmt"

	"github.com/nmishr/recflow/pkg/record"
)

// Common error values used across recflow components.
var (
	// ErrClosed indicates that an operation was attempted on a closed resource.
	ErrClosed = errors.New("resource is closed")

	// ErrInvalidConfiguration indicates invalid configuration parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Decision is the recovery decision for a single failure.
type Decision int

const (
	// Resume drops the failing item and continues the run.
	Resume Decision = iota

	// Abort terminates the entire run and discards accumulated results.
	Abort
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Resume:
		return "resume"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Policy maps a stage failure to a recovery decision. It is called uniformly
// at every stage boundary instead of scattering recovery logic per stage.
type Policy func(err error) Decision

// CreateError reports a record rejected by the Creator. The record is
// dropped and the run continues.
type CreateError struct {
	Record record.Record
	Err    error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create record %d: %v", e.Record.ID, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// NewCreateError wraps a creation rejection for the given record.
func NewCreateError(rec record.Record, err error) *CreateError {
	return &CreateError{Record: rec, Err: err}
}

// AbortError is returned by a run terminated on an unrecoverable failure.
// Cause is the failure that triggered the abort.
type AbortError struct {
	Cause error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("pipeline aborted: %v", e.Cause)
}

func (e *AbortError) Unwrap() error { return e.Cause }

// Classify is the default Policy. Parse and create failures resolve to
// Resume; everything else resolves to Abort.
func Classify(err error) Decision {
	var pe *record.ParseError
	if errors.As(err, &pe) {
		return Resume
	}

	var ce *CreateError
	if errors.As(err, &ce) {
		return Resume
	}

	return Abort
}
