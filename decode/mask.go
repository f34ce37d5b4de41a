// SPDX-License-Identifier: MIT

package decode

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/model"
)

// maskTimestep is the placeholder timestep; the model ignores it here.
const maskTimestep = 0

// MaskDecoder is order-agnostic mask-and-reveal decoding. Every row starts
// fully masked; each step reveals exactly one masked position per row and
// draws its symbol from the model's distribution over generatable symbols.
// The first reveal position is uniform over all L positions.
type MaskDecoder struct {
	base
}

// NewMask builds the order-agnostic decoder.
// Errors: ErrMissingDependency, ErrOptionViolation.
func NewMask(a *alphabet.Alphabet, sc model.Scorer, opts ...Option) (*MaskDecoder, error) {
	if a == nil || sc == nil {
		return nil, fmt.Errorf("NewMask: %w", ErrMissingDependency)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("NewMask: %w", err)
	}

	return &MaskDecoder{base{a: a, scorer: sc, opts: o}}, nil
}

// Mode returns ModeMask.
func (d *MaskDecoder) Mode() Mode { return ModeMask }

func (d *MaskDecoder) sealed() {}

// Begin allocates rows fully masked rows of the given length. With the
// random policy each row gets its own reveal permutation; its first element
// is the uniform cold-start position.
func (d *MaskDecoder) Begin(rows, length int, rng *rand.Rand) (*State, error) {
	if err := checkBatch(rows, length, true); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRNG(0)
	}

	st := newState(rows, length, rng)
	st.revealed = make([][]bool, rows)
	st.order = make([][]int, rows)
	mask := d.a.MaskID()
	var r, i int
	for r = 0; r < rows; r++ {
		st.tokens[r] = make([]int, length)
		for i = 0; i < length; i++ {
			st.tokens[r][i] = mask
		}
		st.revealed[r] = make([]bool, length)
		switch d.opts.Position {
		case PositionConfident:
			st.order[r] = []int{rng.Intn(length)}
		default:
			st.order[r] = permRange(length, rng)
		}
	}
	st.probs = make([]float64, d.a.Generatable())
	st.prop = make([]float64, d.a.Generatable())

	return st, nil
}

// Next reveals one position in every active row.
//
// Stage 1: query the model on the current (partially masked) rows.
// Stage 2: per row, choose a masked position (cold start, permutation or
// confidence) and never one already revealed.
// Stage 3: draw its symbol from softmax over generatable logits, applying
// the repetition penalty when configured.
func (d *MaskDecoder) Next(ctx context.Context, st *State) (bool, error) {
	if st.done {
		return true, ErrFinished
	}
	rows := activeRows(st)
	if len(rows) == 0 {
		st.done = true

		return true, nil
	}

	// Stage 1
	lg, err := d.query(ctx, st, rows, maskTimestep)
	if err != nil {
		return false, err
	}

	g := d.a.Generatable()
	var (
		i, r, pos, sym int
		sum            float64
		ok             bool
	)
	for i, r = range rows {
		// Stage 2
		pos = d.choose(st, lg, i, r)

		// Stage 3
		softmaxInto(st.probs, lg.Row(i, pos)[:g])
		if sym, sum, ok = sample(st.rng, st.probs); !ok {
			st.fail(r, &DegenerateError{Step: st.step, Row: r, Position: pos, Sum: sum})
			continue
		}
		if d.opts.Penalty > 0 && d.repeatsNeighbour(st, r, pos, sym) {
			st.probs[sym] /= d.opts.Penalty
			if sym, sum, ok = sample(st.rng, st.probs); !ok {
				st.fail(r, &DegenerateError{Step: st.step, Row: r, Position: pos, Sum: sum})
				continue
			}
		}

		st.tokens[r][pos] = sym
		st.revealed[r][pos] = true
		d.opts.OnReveal(r, pos, sym)
		if st.step+1 == st.length {
			st.finished[r] = true
		}
	}

	st.step++
	st.done = !st.anyActive()

	return st.done, nil
}

// choose returns the masked position row r reveals at this step; i is the
// row's index within the logits batch.
func (d *MaskDecoder) choose(st *State, lg *model.Logits, i, r int) int {
	if st.step == 0 || d.opts.Position != PositionConfident {
		if st.step < len(st.order[r]) {
			return st.order[r][st.step]
		}
	}

	// Confidence: highest max-probability among masked positions.
	g := d.a.Generatable()
	best, bestP := -1, -1.0
	var pos, j int
	for pos = 0; pos < st.length; pos++ {
		if st.revealed[r][pos] {
			continue
		}
		softmaxInto(st.prop, lg.Row(i, pos)[:g])
		for j = 0; j < g; j++ {
			if st.prop[j] > bestP {
				best, bestP = pos, st.prop[j]
			}
		}
		if best < 0 { // NaN row: still a masked candidate
			best = pos
		}
	}

	return best
}

// repeatsNeighbour reports whether sym equals a revealed neighbour of pos.
func (d *MaskDecoder) repeatsNeighbour(st *State, r, pos, sym int) bool {
	if pos > 0 && st.revealed[r][pos-1] && st.tokens[r][pos-1] == sym {
		return true
	}

	return pos+1 < st.length && st.revealed[r][pos+1] && st.tokens[r][pos+1] == sym
}

func (d *MaskDecoder) content(st *State, r int) []int {
	return append([]int(nil), st.tokens[r]...)
}
