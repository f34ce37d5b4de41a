// SPDX-License-Identifier: MIT

package decode

import (
	"fmt"
	"math"

	"github.com/rostro36/evodiff/model"
	"go.uber.org/zap"
)

// PositionPolicy selects which masked position the order-agnostic decoder
// reveals after the uniform cold-start reveal.
type PositionPolicy string

const (
	// PositionRandom follows a per-sequence uniform random permutation.
	PositionRandom PositionPolicy = "random"

	// PositionConfident picks the masked position whose most likely
	// generatable symbol has the highest probability (lowest index on ties).
	PositionConfident PositionPolicy = "confident"
)

// DefaultMaxLength caps autoregressive content length.
const DefaultMaxLength = 500

// Option configures a decoder. Invalid options are recorded and surfaced as
// ErrOptionViolation by the constructor.
type Option func(*Options)

// Options holds decoder parameters and observation hooks.
type Options struct {
	// Exec is passed to every scorer call.
	Exec model.ExecContext

	// Logger receives per-step debug records. Defaults to a no-op logger.
	Logger *zap.Logger

	// Penalty > 1 enables the order-agnostic repetition penalty: a symbol
	// equal to a revealed neighbour has its probability divided by Penalty
	// and is resampled once. 0 disables it.
	Penalty float64

	// Position selects the order-agnostic reveal policy.
	Position PositionPolicy

	// SingleShot makes the diffusion decoder sample x₀ directly from the
	// model at t = T-1 instead of running the reverse chain.
	SingleShot bool

	// MaxLength caps autoregressive content length.
	MaxLength int

	// StructuralFilter removes mask, pad, start and gap mass before every
	// autoregressive draw. Off samples the full vocabulary softmax.
	StructuralFilter bool

	// OnStep is called before every model query with the step index and the
	// timestep passed to the scorer.
	OnStep func(step, timestep int)

	// OnReveal is called when the order-agnostic decoder fixes a position.
	OnReveal func(row, position, symbol int)

	// OnPosterior is called with the normalised reverse posterior of every
	// diffusion position before sampling. post is reused; copy to retain.
	OnPosterior func(step, row, position int, post []float64)

	err error
}

// DefaultOptions returns random-order reveals, no penalty, the full reverse
// chain and DefaultMaxLength.
func DefaultOptions() Options {
	return Options{
		Exec:             model.ExecContext{Device: "cpu"},
		Logger:           zap.NewNop(),
		Position:         PositionRandom,
		MaxLength:        DefaultMaxLength,
		StructuralFilter: true,
		OnStep:           func(int, int) {},
		OnReveal:         func(int, int, int) {},
		OnPosterior:      func(int, int, int, []float64) {},
	}
}

// WithExecContext sets the execution context passed to the scorer.
func WithExecContext(ec model.ExecContext) Option {
	return func(o *Options) { o.Exec = ec }
}

// WithLogger sets the logger; nil is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithPenalty sets the repetition penalty.
//
//	p == 0: disabled
//	p >= 1: enabled (1 is a no-op divisor)
//	otherwise: ErrOptionViolation
func WithPenalty(p float64) Option {
	return func(o *Options) {
		if p != 0 && (!(p >= 1) || math.IsInf(p, 0)) {
			o.err = fmt.Errorf("%w: penalty %g (want 0 or >= 1)", ErrOptionViolation, p)

			return
		}
		o.Penalty = p
	}
}

// WithPositionPolicy selects the order-agnostic reveal policy.
func WithPositionPolicy(p PositionPolicy) Option {
	return func(o *Options) {
		switch p {
		case PositionRandom, PositionConfident:
			o.Position = p
		default:
			o.err = fmt.Errorf("%w: position policy %q", ErrOptionViolation, p)
		}
	}
}

// WithSingleShot toggles the low-fidelity single-pass diffusion mode.
func WithSingleShot(on bool) Option {
	return func(o *Options) { o.SingleShot = on }
}

// WithMaxLength caps autoregressive content length; n must be > 0.
func WithMaxLength(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			o.err = fmt.Errorf("%w: max length %d", ErrOptionViolation, n)

			return
		}
		o.MaxLength = n
	}
}

// WithStructuralFilter toggles removal of structural specials from the
// autoregressive sampling distribution (default on).
func WithStructuralFilter(on bool) Option {
	return func(o *Options) { o.StructuralFilter = on }
}

// WithOnStep registers a per-step callback.
func WithOnStep(fn func(step, timestep int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnStep = fn
		}
	}
}

// WithOnReveal registers an order-agnostic reveal callback.
func WithOnReveal(fn func(row, position, symbol int)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnReveal = fn
		}
	}
}

// WithOnPosterior registers a diffusion posterior callback.
func WithOnPosterior(fn func(step, row, position int, post []float64)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnPosterior = fn
		}
	}
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o, o.err
}
