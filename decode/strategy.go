// SPDX-License-Identifier: MIT

package decode

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/model"
	"github.com/rostro36/evodiff/schedule"
	"go.uber.org/zap"
)

// Mode names a decoding paradigm.
type Mode string

const (
	// ModeMask is order-agnostic mask-and-reveal decoding.
	ModeMask Mode = "oa-mask"

	// ModeDiffusion is discrete-state Markov diffusion decoding.
	ModeDiffusion Mode = "diffusion"

	// ModeAutoregressive is strict left-to-right decoding.
	ModeAutoregressive Mode = "autoregressive"

	// ModeReference draws i.i.d. symbols from empirical marginals.
	ModeReference Mode = "reference"
)

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeMask, ModeDiffusion, ModeAutoregressive, ModeReference:
		return m, nil
	}

	return "", fmt.Errorf("ParseMode(%q): %w", s, ErrUnknownMode)
}

// FixedLength reports whether the mode decodes to a caller-supplied length.
func (m Mode) FixedLength() bool { return m != ModeAutoregressive }

// Strategy is the closed set of decoding state machines. Implementations
// live in this package only: MaskDecoder, DiffusionDecoder,
// AutoregressiveDecoder and ReferenceDecoder.
//
// Begin allocates the state of a batch of independent rows; Next performs
// exactly one decoding step and reports whether every row has terminated.
// Next must not be called concurrently on the same State.
type Strategy interface {
	Mode() Mode
	Begin(rows, length int, rng *rand.Rand) (*State, error)
	Next(ctx context.Context, st *State) (bool, error)

	sealed()
}

// State is the in-flight state of one decoding batch. It is owned by a
// single run and never shared.
type State struct {
	tokens    [][]int
	length    int
	step      int
	rng       *rand.Rand
	finished  []bool
	truncated []bool
	rowErr    []error
	done      bool

	// order-agnostic
	order    [][]int
	revealed [][]bool

	// diffusion
	timesteps []int

	// scratch, len K or Size
	probs, colA, prop []float64
}

func newState(rows, length int, rng *rand.Rand) *State {
	return &State{
		tokens:    make([][]int, rows),
		length:    length,
		rng:       rng,
		finished:  make([]bool, rows),
		truncated: make([]bool, rows),
		rowErr:    make([]error, rows),
	}
}

// Rows returns the batch size.
func (st *State) Rows() int { return len(st.tokens) }

// Step returns the number of completed steps.
func (st *State) Step() int { return st.step }

// Done reports whether the run has terminated.
func (st *State) Done() bool { return st.done }

// Tokens returns a copy of row r's current token array.
func (st *State) Tokens(r int) []int { return append([]int(nil), st.tokens[r]...) }

// active reports whether row r still takes part in decoding.
func (st *State) active(r int) bool { return !st.finished[r] && st.rowErr[r] == nil }

// fail marks row r as failed; sibling rows continue.
func (st *State) fail(r int, err error) { st.rowErr[r] = err }

// anyActive reports whether some row still needs steps.
func (st *State) anyActive() bool {
	for r := range st.tokens {
		if st.active(r) {
			return true
		}
	}

	return false
}

// snapshot copies the given rows for a scorer call; the scorer owns the copy.
func (st *State) snapshot(rows []int) [][]int {
	out := make([][]int, len(rows))
	for i, r := range rows {
		out[i] = append([]int(nil), st.tokens[r]...)
	}

	return out
}

// Result is one finished row: content tokens (no start/stop framing), their
// symbol rendering, and termination details. Err is set when the row failed;
// the other fields are then unspecified.
type Result struct {
	Tokens    []int
	Text      string
	Truncated bool
	Steps     int
	Err       error
}

// Run drives s to completion for a batch of rows and returns one Result per
// row. Steps are strictly sequential; ctx is checked before every step.
//
// A non-nil error aborts the whole batch (scorer failure, shape mismatch,
// cancellation, invalid request). Row-local failures such as a degenerate
// posterior are reported in Result.Err and do not stop sibling rows.
func Run(ctx context.Context, s Strategy, rows, length int, rng *rand.Rand) ([]Result, error) {
	st, err := s.Begin(rows, length, rng)
	if err != nil {
		return nil, err
	}

	var done bool
	for !done {
		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("decode: step %d: %w", st.step, err)
		}
		if done, err = s.Next(ctx, st); err != nil {
			return nil, err
		}
	}

	return collect(s, st)
}

// renderer is implemented by every decoder to map final rows to content.
type renderer interface {
	alpha() *alphabet.Alphabet
	content(st *State, r int) []int
}

// Compile-time checks: the closed set of strategies.
var (
	_ Strategy = (*MaskDecoder)(nil)
	_ Strategy = (*DiffusionDecoder)(nil)
	_ Strategy = (*AutoregressiveDecoder)(nil)
	_ Strategy = (*ReferenceDecoder)(nil)

	_ renderer = (*MaskDecoder)(nil)
	_ renderer = (*DiffusionDecoder)(nil)
	_ renderer = (*AutoregressiveDecoder)(nil)
	_ renderer = (*ReferenceDecoder)(nil)
)

func collect(s Strategy, st *State) ([]Result, error) {
	rd, ok := s.(renderer)
	if !ok {
		return nil, fmt.Errorf("decode: %s: %w", s.Mode(), ErrUnknownMode)
	}
	out := make([]Result, st.Rows())
	for r := range out {
		out[r].Steps = st.step
		if st.rowErr[r] != nil {
			out[r].Err = st.rowErr[r]
			continue
		}
		out[r].Tokens = rd.content(st, r)
		out[r].Truncated = st.truncated[r]
		text, err := rd.alpha().Decode(out[r].Tokens)
		if err != nil {
			out[r].Err = err
			continue
		}
		out[r].Text = text
	}

	return out, nil
}

// Deps are the collaborators a strategy may need.
type Deps struct {
	Alphabet  *alphabet.Alphabet
	Scorer    model.Scorer
	Schedule  *schedule.Schedule
	Marginals []float64
}

// New selects and constructs the strategy for mode once; the engine never
// re-dispatches per step.
func New(mode Mode, d Deps, opts ...Option) (Strategy, error) {
	var (
		s   Strategy
		err error
	)
	switch mode {
	case ModeMask:
		var m *MaskDecoder
		m, err = NewMask(d.Alphabet, d.Scorer, opts...)
		s = m
	case ModeDiffusion:
		var m *DiffusionDecoder
		m, err = NewDiffusion(d.Alphabet, d.Scorer, d.Schedule, opts...)
		s = m
	case ModeAutoregressive:
		var m *AutoregressiveDecoder
		m, err = NewAutoregressive(d.Alphabet, d.Scorer, opts...)
		s = m
	case ModeReference:
		var m *ReferenceDecoder
		m, err = NewReference(d.Alphabet, d.Marginals, opts...)
		s = m
	default:
		return nil, fmt.Errorf("New(%q): %w", mode, ErrUnknownMode)
	}
	if err != nil {
		return nil, err // never a typed-nil Strategy
	}

	return s, nil
}

// base carries what every model-backed decoder shares.
type base struct {
	a      *alphabet.Alphabet
	scorer model.Scorer
	opts   Options
}

func (b *base) alpha() *alphabet.Alphabet { return b.a }

// query scores the given rows at one timestep and checks the returned shape.
func (b *base) query(ctx context.Context, st *State, rows []int, timestep int) (*model.Logits, error) {
	b.opts.OnStep(st.step, timestep)
	tokens := st.snapshot(rows)
	ts := make([]int, len(rows))
	for i := range ts {
		ts[i] = timestep
	}

	lg, err := b.scorer.Score(ctx, b.opts.Exec, tokens, ts)
	if err != nil {
		return nil, fmt.Errorf("decode: step %d: score: %w", st.step, err)
	}
	if err = lg.Check(model.Shape{Batch: len(rows), Length: len(tokens[0]), Vocab: b.a.Size()}); err != nil {
		return nil, fmt.Errorf("decode: step %d: %w", st.step, err)
	}
	b.opts.Logger.Debug("decode step",
		zap.Int("step", st.step),
		zap.Int("timestep", timestep),
		zap.Int("rows", len(rows)),
		zap.Int("length", len(tokens[0])),
	)

	return lg, nil
}

func checkBatch(rows, length int, fixed bool) error {
	if rows <= 0 {
		return fmt.Errorf("Begin: rows=%d: %w", rows, ErrInvalidRows)
	}
	if fixed && length <= 0 {
		return fmt.Errorf("Begin: length=%d: %w", length, ErrInvalidLength)
	}

	return nil
}

// activeRows lists the rows that still take part in decoding.
func activeRows(st *State) []int {
	rows := make([]int, 0, st.Rows())
	for r := range st.tokens {
		if st.active(r) {
			rows = append(rows, r)
		}
	}

	return rows
}
