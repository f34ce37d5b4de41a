// SPDX-License-Identifier: MIT

package schedule

import (
	"fmt"
	"math"

	"github.com/rostro36/evodiff/matrix"
)

// Family selects the corruption kernel mixed in at every step.
type Family string

const (
	// Uniform corrupts towards the uniform distribution over K symbols.
	Uniform Family = "uniform"

	// Similarity corrupts along a doubly stochastic similarity kernel.
	Similarity Family = "similarity"
)

// ParseFamily maps a configuration string to a Family.
func ParseFamily(s string) (Family, error) {
	switch f := Family(s); f {
	case Uniform, Similarity:
		return f, nil
	}

	return "", fmt.Errorf("ParseFamily(%q): %w", s, ErrUnknownFamily)
}

// DefaultBeta returns the beta schedule conventionally paired with a family.
func DefaultBeta(f Family) BetaKind {
	if f == Similarity {
		return BetaExp
	}

	return BetaSohlDickstein
}

// DefaultTolerance is the row-sum tolerance checked after construction.
const DefaultTolerance = 1e-6

// Option configures Build. Invalid options are recorded and surfaced as
// ErrOptionViolation by Build.
type Option func(*Options)

// Options holds the parameters of a schedule build.
type Options struct {
	// Family selects uniform or similarity corruption.
	Family Family

	// Beta selects the noise schedule; empty means DefaultBeta(Family).
	Beta BetaKind

	// Kernel is the K×K similarity kernel for the Similarity family.
	Kernel matrix.Matrix

	// LinearStart and LinearEnd bound the linear schedule.
	LinearStart, LinearEnd float64

	// ExpMax is the upper exponent of the exp schedule.
	ExpMax float64

	// CosineShift is the small offset s of the cosine schedule.
	CosineShift float64

	// Tolerance bounds |row sum - 1| for every Q_t and Q̄_t.
	Tolerance float64

	err error
}

// DefaultOptions returns the uniform family with its default betas.
func DefaultOptions() Options {
	return Options{
		Family:      Uniform,
		LinearStart: DefaultLinearStart,
		LinearEnd:   DefaultLinearEnd,
		ExpMax:      DefaultExpMax,
		CosineShift: DefaultCosineShift,
		Tolerance:   DefaultTolerance,
	}
}

// WithFamily selects the corruption family.
func WithFamily(f Family) Option {
	return func(o *Options) {
		if _, err := ParseFamily(string(f)); err != nil {
			o.err = fmt.Errorf("%w: %v", ErrOptionViolation, err)

			return
		}
		o.Family = f
	}
}

// WithBeta selects the beta schedule.
func WithBeta(k BetaKind) Option {
	return func(o *Options) {
		if _, err := ParseBetaKind(string(k)); err != nil {
			o.err = fmt.Errorf("%w: %v", ErrOptionViolation, err)

			return
		}
		o.Beta = k
	}
}

// WithKernel supplies the similarity kernel (ignored by Uniform).
func WithKernel(m matrix.Matrix) Option {
	return func(o *Options) {
		if m == nil {
			o.err = fmt.Errorf("%w: nil kernel", ErrOptionViolation)

			return
		}
		o.Kernel = m
	}
}

// WithLinearRange sets the linear schedule bounds, 0 < start ≤ end ≤ 1.
func WithLinearRange(start, end float64) Option {
	return func(o *Options) {
		if !(start > 0 && start <= end && end <= 1) {
			o.err = fmt.Errorf("%w: linear range [%g, %g]", ErrOptionViolation, start, end)

			return
		}
		o.LinearStart, o.LinearEnd = start, end
	}
}

// WithExpMax sets the exp schedule's upper exponent.
func WithExpMax(v float64) Option {
	return func(o *Options) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			o.err = fmt.Errorf("%w: exp max %g", ErrOptionViolation, v)

			return
		}
		o.ExpMax = v
	}
}

// WithTolerance sets the row-sum tolerance checked after construction.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		if !(tol > 0) || math.IsInf(tol, 0) {
			o.err = fmt.Errorf("%w: tolerance %g", ErrOptionViolation, tol)

			return
		}
		o.Tolerance = tol
	}
}
