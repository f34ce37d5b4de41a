// SPDX-License-Identifier: MIT

package decode

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/model"
	"github.com/rostro36/evodiff/schedule"
)

// DiffusionDecoder reverses a discrete Markov corruption schedule.
//
// Rows start as i.i.d. uniform draws over the K standard symbols and are
// updated for t = T-1 down to 1. At each step every position independently
// draws x_{t-1} from
//
//	post(b) ∝ Q_t[b, x_t] · Σ_a p̃(a)·Q̄_{t-1}[a, b]
//
// where p̃ = softmax of the model's K standard-symbol logits. The t = 1
// draw is restricted to generatable symbols. In single-shot mode the
// decoder queries once at t = T-1 and draws x₀ from p̃ directly.
type DiffusionDecoder struct {
	base
	sched *schedule.Schedule
}

// NewDiffusion builds the diffusion decoder. The schedule must act on the
// alphabet's K standard symbols and have T ≥ 2.
// Errors: ErrMissingDependency, ErrScheduleMismatch, ErrOptionViolation.
func NewDiffusion(a *alphabet.Alphabet, sc model.Scorer, s *schedule.Schedule, opts ...Option) (*DiffusionDecoder, error) {
	if a == nil || sc == nil || s == nil {
		return nil, fmt.Errorf("NewDiffusion: %w", ErrMissingDependency)
	}
	if s.K() != a.K() {
		return nil, fmt.Errorf("NewDiffusion: schedule K=%d, alphabet K=%d: %w", s.K(), a.K(), ErrScheduleMismatch)
	}
	if s.Steps() < 2 {
		return nil, fmt.Errorf("NewDiffusion: T=%d has no reverse step: %w", s.Steps(), ErrScheduleMismatch)
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("NewDiffusion: %w", err)
	}

	return &DiffusionDecoder{base: base{a: a, scorer: sc, opts: o}, sched: s}, nil
}

// Mode returns ModeDiffusion.
func (d *DiffusionDecoder) Mode() Mode { return ModeDiffusion }

func (d *DiffusionDecoder) sealed() {}

// Begin draws rows uniform-random rows over the K standard symbols and fixes
// the timestep sequence: T-1..1, or just T-1 in single-shot mode.
func (d *DiffusionDecoder) Begin(rows, length int, rng *rand.Rand) (*State, error) {
	if err := checkBatch(rows, length, true); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRNG(0)
	}

	st := newState(rows, length, rng)
	k := d.a.K()
	var r, i, t int
	for r = 0; r < rows; r++ {
		st.tokens[r] = make([]int, length)
		for i = 0; i < length; i++ {
			st.tokens[r][i] = rng.Intn(k)
		}
	}

	T := d.sched.Steps()
	if d.opts.SingleShot {
		st.timesteps = []int{T - 1}
	} else {
		st.timesteps = make([]int, 0, T-1)
		for t = T - 1; t >= 1; t-- {
			st.timesteps = append(st.timesteps, t)
		}
	}
	st.probs = make([]float64, k)
	st.colA = make([]float64, k)
	st.prop = make([]float64, k)

	return st, nil
}

// Next performs one reverse step for every active row. All rows share the
// step's timestep and model query; positions are sampled independently.
// After the last timestep the run is finished unconditionally.
func (d *DiffusionDecoder) Next(ctx context.Context, st *State) (bool, error) {
	if st.done {
		return true, ErrFinished
	}
	rows := activeRows(st)
	if len(rows) == 0 {
		st.done = true

		return true, nil
	}

	t := st.timesteps[st.step]
	final := st.step == len(st.timesteps)-1
	lg, err := d.query(ctx, st, rows, t)
	if err != nil {
		return false, err
	}

	k, g := d.a.K(), d.a.Generatable()
	next := make([]int, st.length)
	var (
		i, r, pos int
		rowErr    error
	)
	for i, r = range rows {
		for pos = 0; pos < st.length; pos++ {
			if next[pos], rowErr = d.draw(st, lg.Row(i, pos)[:k], r, pos, t, final, g); rowErr != nil {
				break
			}
		}
		if rowErr != nil {
			st.fail(r, rowErr)
			rowErr = nil
			continue
		}
		copy(st.tokens[r], next) // x_{t-1} replaces x_t only after the full row is drawn
	}

	st.step++
	if final {
		for _, r = range rows {
			st.finished[r] = true
		}
	}
	st.done = final || !st.anyActive()

	return st.done, nil
}

// draw samples the new symbol of one position.
//
// Stage 1: p̃ = softmax(model logits over K).
// Stage 2 (full chain): post = Q_t[·, x_t] ⊙ (p̃ᵀ·Q̄_{t-1}), normalised.
// Stage 3: sample; the final draw only sees the first g symbols.
func (d *DiffusionDecoder) draw(st *State, logits []float64, r, pos, t int, final bool, g int) (int, error) {
	// Stage 1
	softmaxInto(st.probs, logits)
	post := st.probs

	if !d.opts.SingleShot {
		// Stage 2
		if err := d.sched.ForwardColumnInto(st.colA, t, st.tokens[r][pos]); err != nil {
			return -1, err
		}
		if err := d.sched.PropagateInto(st.prop, st.probs, t-1); err != nil {
			return -1, err
		}
		for b := range st.prop {
			st.prop[b] *= st.colA[b]
		}
		post = st.prop
	}

	sum, ok := normalize(post)
	if !ok {
		return -1, &DegenerateError{Step: st.step, Row: r, Position: pos, Sum: sum}
	}
	d.opts.OnPosterior(st.step, r, pos, post)

	// Stage 3
	if final {
		post = post[:g]
	}
	sym, sum, ok := sample(st.rng, post)
	if !ok {
		return -1, &DegenerateError{Step: st.step, Row: r, Position: pos, Sum: sum}
	}

	return sym, nil
}

func (d *DiffusionDecoder) content(st *State, r int) []int {
	return append([]int(nil), st.tokens[r]...)
}
