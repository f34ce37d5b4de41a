// SPDX-License-Identifier: MIT

package decode

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/model"
)

// autoregTimestep is the placeholder timestep passed to the scorer.
const autoregTimestep = 0

// AutoregressiveDecoder emits symbols strictly left to right. Each row
// starts as [start]; every step samples the next symbol from the softmax of
// the last position's logits over the full vocabulary. By default mask, pad,
// start and gap mass is removed so structural symbols never become content;
// WithStructuralFilter(false) samples the unrestricted softmax. A row
// ends when it samples stop, or is truncated at MaxLength content symbols.
type AutoregressiveDecoder struct {
	base
}

// NewAutoregressive builds the left-to-right decoder.
// Errors: ErrMissingDependency, ErrOptionViolation.
func NewAutoregressive(a *alphabet.Alphabet, sc model.Scorer, opts ...Option) (*AutoregressiveDecoder, error) {
	if a == nil || sc == nil {
		return nil, fmt.Errorf("NewAutoregressive: %w", ErrMissingDependency)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("NewAutoregressive: %w", err)
	}

	return &AutoregressiveDecoder{base{a: a, scorer: sc, opts: o}}, nil
}

// Mode returns ModeAutoregressive.
func (d *AutoregressiveDecoder) Mode() Mode { return ModeAutoregressive }

func (d *AutoregressiveDecoder) sealed() {}

// MaxLength returns the configured content cap.
func (d *AutoregressiveDecoder) MaxLength() int { return d.opts.MaxLength }

// Begin allocates rows rows holding only the start symbol. length is
// ignored: output length is decided by the model and MaxLength.
func (d *AutoregressiveDecoder) Begin(rows, length int, rng *rand.Rand) (*State, error) {
	if err := checkBatch(rows, length, false); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRNG(0)
	}

	st := newState(rows, 0, rng)
	for r := 0; r < rows; r++ {
		st.tokens[r] = make([]int, 1, d.opts.MaxLength+2)
		st.tokens[r][0] = d.a.StartID()
	}
	st.probs = make([]float64, d.a.Size())

	return st, nil
}

// Next appends one symbol to every active row. Active rows share a length,
// so they are scored as one batch.
func (d *AutoregressiveDecoder) Next(ctx context.Context, st *State) (bool, error) {
	if st.done {
		return true, ErrFinished
	}
	rows := activeRows(st)
	if len(rows) == 0 {
		st.done = true

		return true, nil
	}

	lg, err := d.query(ctx, st, rows, autoregTimestep)
	if err != nil {
		return false, err
	}

	last := len(st.tokens[rows[0]]) - 1
	stop := d.a.StopID()
	var (
		i, r, sym int
		sum       float64
		ok        bool
	)
	for i, r = range rows {
		softmaxInto(st.probs, lg.Row(i, last))
		if d.opts.StructuralFilter {
			d.dropStructural(st.probs)
		}
		if sym, sum, ok = sample(st.rng, st.probs); !ok {
			st.fail(r, &DegenerateError{Step: st.step, Row: r, Position: last + 1, Sum: sum})
			continue
		}
		st.tokens[r] = append(st.tokens[r], sym)
		switch {
		case sym == stop:
			st.finished[r] = true
		case len(st.tokens[r])-1 >= d.opts.MaxLength:
			st.finished[r] = true
			st.truncated[r] = true
		}
	}

	st.step++
	st.done = !st.anyActive()

	return st.done, nil
}

// dropStructural zeroes every special except stop.
func (d *AutoregressiveDecoder) dropStructural(p []float64) {
	stop := d.a.StopID()
	for id := d.a.K(); id < len(p); id++ {
		if id != stop {
			p[id] = 0
		}
	}
}

// content strips the leading start and a trailing stop.
func (d *AutoregressiveDecoder) content(st *State, r int) []int {
	toks := st.tokens[r][1:]
	if n := len(toks); n > 0 && toks[n-1] == d.a.StopID() {
		toks = toks[:n-1]
	}

	return append([]int{}, toks...)
}
