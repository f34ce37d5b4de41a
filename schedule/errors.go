// SPDX-License-Identifier: MIT

package schedule

import "errors"

// Sentinel errors for schedule construction and lookup.
var (
	// ErrNonPositiveSteps is returned when the step count T is ≤ 0.
	ErrNonPositiveSteps = errors.New("schedule: step count must be > 0")

	// ErrTooFewSymbols is returned when K ≤ 1.
	ErrTooFewSymbols = errors.New("schedule: need K > 1 symbols")

	// ErrUnknownFamily is returned for a corruption family other than
	// uniform or similarity.
	ErrUnknownFamily = errors.New("schedule: unknown corruption family")

	// ErrUnknownBeta is returned for an unrecognised beta schedule name.
	ErrUnknownBeta = errors.New("schedule: unknown beta schedule")

	// ErrBetaRange is returned when a computed β_t falls outside (0, 1].
	ErrBetaRange = errors.New("schedule: beta outside (0, 1]")

	// ErrMissingKernel is returned when the similarity family has no kernel.
	ErrMissingKernel = errors.New("schedule: similarity family needs a kernel")

	// ErrStepOutOfRange is returned by accessors for t outside the schedule.
	ErrStepOutOfRange = errors.New("schedule: step out of range")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("schedule: invalid option supplied")
)
