// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCount indicates a non-positive number of requested outputs.
	ErrInvalidCount = errors.New("engine: requested count must be positive")

	// ErrInvalidLength indicates a length source produced a non-positive length.
	ErrInvalidLength = errors.New("engine: sampled length must be positive")

	// ErrNoLengths indicates an empirical length source with nothing to draw from.
	ErrNoLengths = errors.New("engine: empty length distribution")

	// ErrLengthTable indicates a malformed length table.
	ErrLengthTable = errors.New("engine: malformed length table")

	// ErrMissingDependency indicates a nil strategy, sink, or a missing
	// length source for a length-fixed strategy.
	ErrMissingDependency = errors.New("engine: missing dependency")

	// ErrOptionViolation indicates an invalid option value.
	ErrOptionViolation = errors.New("engine: option violation")
)

// RequestError identifies the requested output that failed. Sibling
// requests are unaffected.
type RequestError struct {
	Index int
	Err   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("engine: request %d: %v", e.Index, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
