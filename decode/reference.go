// SPDX-License-Identifier: MIT

package decode

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rostro36/evodiff/alphabet"
)

// ReferenceDecoder is the model-free baseline: every position is an
// independent draw, with replacement, from a fixed marginal vector over the
// K standard symbols. It completes in a single step.
type ReferenceDecoder struct {
	a         *alphabet.Alphabet
	marginals []float64
	sum       float64
	opts      Options
}

// NewReference builds the baseline. marginals must have K finite,
// non-negative entries with positive total; they need not be normalised.
// Errors: ErrMissingDependency, ErrBadMarginals, ErrOptionViolation.
func NewReference(a *alphabet.Alphabet, marginals []float64, opts ...Option) (*ReferenceDecoder, error) {
	if a == nil {
		return nil, fmt.Errorf("NewReference: %w", ErrMissingDependency)
	}
	if len(marginals) != a.K() {
		return nil, fmt.Errorf("NewReference: %d marginals for K=%d: %w", len(marginals), a.K(), ErrBadMarginals)
	}
	var sum float64
	for i, v := range marginals {
		if !(v >= 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("NewReference: marginal[%d]=%g: %w", i, v, ErrBadMarginals)
		}
		sum += v
	}
	if !(sum > 0) {
		return nil, fmt.Errorf("NewReference: zero mass: %w", ErrBadMarginals)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("NewReference: %w", err)
	}

	return &ReferenceDecoder{a: a, marginals: append([]float64(nil), marginals...), sum: sum, opts: o}, nil
}

// Mode returns ModeReference.
func (d *ReferenceDecoder) Mode() Mode { return ModeReference }

func (d *ReferenceDecoder) sealed() {}

func (d *ReferenceDecoder) alpha() *alphabet.Alphabet { return d.a }

// Begin allocates rows empty rows of the given length.
func (d *ReferenceDecoder) Begin(rows, length int, rng *rand.Rand) (*State, error) {
	if err := checkBatch(rows, length, true); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRNG(0)
	}

	st := newState(rows, length, rng)
	for r := 0; r < rows; r++ {
		st.tokens[r] = make([]int, length)
	}

	return st, nil
}

// Next fills every row with independent draws and finishes.
func (d *ReferenceDecoder) Next(_ context.Context, st *State) (bool, error) {
	if st.done {
		return true, ErrFinished
	}
	d.opts.OnStep(st.step, 0)

	var r, i int
	for r = 0; r < st.Rows(); r++ {
		for i = 0; i < st.length; i++ {
			st.tokens[r][i] = categorical(st.rng, d.marginals, d.sum)
		}
		st.finished[r] = true
	}
	st.step++
	st.done = true

	return true, nil
}

func (d *ReferenceDecoder) content(st *State, r int) []int {
	return append([]int(nil), st.tokens[r]...)
}
