// SPDX-License-Identifier: MIT

package decode

import (
	"errors"
	"fmt"
)

// Sentinel errors for decoding.
var (
	// ErrUnknownMode is returned for a decoding mode outside the four variants.
	ErrUnknownMode = errors.New("decode: unknown decoding mode")

	// ErrInvalidLength is returned for a non-positive target length.
	ErrInvalidLength = errors.New("decode: length must be > 0")

	// ErrInvalidRows is returned for a non-positive batch row count.
	ErrInvalidRows = errors.New("decode: rows must be > 0")

	// ErrMissingDependency is returned when a strategy lacks a collaborator
	// it needs (scorer, schedule, marginals).
	ErrMissingDependency = errors.New("decode: missing dependency")

	// ErrScheduleMismatch is returned when the schedule's K differs from the
	// alphabet's or the schedule is too short to reverse.
	ErrScheduleMismatch = errors.New("decode: schedule does not fit alphabet")

	// ErrBadMarginals is returned for a marginal vector of the wrong width,
	// with negative or non-finite entries, or with zero mass.
	ErrBadMarginals = errors.New("decode: invalid marginal distribution")

	// ErrDegenerate is returned when a distribution has zero, negative or
	// non-finite mass right before sampling.
	ErrDegenerate = errors.New("decode: degenerate distribution")

	// ErrFinished is returned by Next on a state whose run has ended.
	ErrFinished = errors.New("decode: state already finished")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("decode: invalid option supplied")
)

// DegenerateError identifies where a distribution collapsed.
// Step is the decoding step (0-based), Row the batch row and Position the
// sequence position; Sum is the offending total mass.
type DegenerateError struct {
	Step, Row, Position int
	Sum                 float64
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("decode: degenerate distribution at step %d row %d position %d (mass %g)",
		e.Step, e.Row, e.Position, e.Sum)
}

// Unwrap lets errors.Is match ErrDegenerate.
func (e *DegenerateError) Unwrap() error { return ErrDegenerate }
