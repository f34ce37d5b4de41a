// SPDX-License-Identifier: MIT

package model

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for scorer inputs and outputs.
var (
	// ErrShapeMismatch is returned when logits do not match [batch, length, vocab].
	ErrShapeMismatch = errors.New("model: logits shape mismatch")

	// ErrEmptyBatch is returned when a scorer is called with no sequences.
	ErrEmptyBatch = errors.New("model: empty batch")

	// ErrRaggedBatch is returned when batch rows differ in length or the
	// timestep count differs from the batch size.
	ErrRaggedBatch = errors.New("model: ragged batch")
)

// Shape is the [batch, length, vocab] layout of a logits tensor.
type Shape struct {
	Batch, Length, Vocab int
}

// String renders the shape as [b l v].
func (s Shape) String() string { return fmt.Sprintf("[%d %d %d]", s.Batch, s.Length, s.Vocab) }

// ShapeError reports observed and expected logits shapes.
type ShapeError struct {
	Got, Want Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("model: logits shape %v, want %v", e.Got, e.Want)
}

// Unwrap lets errors.Is match ErrShapeMismatch.
func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// ExecContext carries explicit execution placement for a scorer call.
// It replaces ambient process state such as a global current device.
type ExecContext struct {
	// Device names the accelerator or host the scorer should run on,
	// e.g. "cpu" or "cuda:0". Scorers may ignore it.
	Device string

	// RunID tags the call with the generation run it belongs to.
	RunID string
}

// Logits is a dense row-major [batch, length, vocab] tensor.
type Logits struct {
	Shape
	Data []float64
}

// NewLogits allocates a zeroed tensor.
func NewLogits(batch, length, vocab int) *Logits {
	return &Logits{Shape: Shape{batch, length, vocab}, Data: make([]float64, batch*length*vocab)}
}

// Row returns the vocab-wide slice for (b, l). The slice aliases Data.
func (lg *Logits) Row(b, l int) []float64 {
	off := (b*lg.Length + l) * lg.Vocab

	return lg.Data[off : off+lg.Vocab]
}

// Check verifies the declared shape against want and the data length.
func (lg *Logits) Check(want Shape) error {
	if lg == nil {
		return &ShapeError{Want: want}
	}
	if lg.Shape != want || len(lg.Data) != want.Batch*want.Length*want.Vocab {
		return &ShapeError{Got: lg.Shape, Want: want}
	}

	return nil
}

// Scorer is the opaque sequence-to-logits model. It must be deterministic
// given its weights, tokens and timesteps, and must not retain or mutate
// tokens. timesteps holds one entry per batch row.
type Scorer interface {
	Score(ctx context.Context, ec ExecContext, tokens [][]int, timesteps []int) (*Logits, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, ec ExecContext, tokens [][]int, timesteps []int) (*Logits, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, ec ExecContext, tokens [][]int, timesteps []int) (*Logits, error) {
	return f(ctx, ec, tokens, timesteps)
}

// CheckBatch validates a scorer input: non-empty, rectangular, and one
// timestep per row. It returns the common row length.
func CheckBatch(tokens [][]int, timesteps []int) (int, error) {
	if len(tokens) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(timesteps) != len(tokens) {
		return 0, fmt.Errorf("%d timesteps for %d rows: %w", len(timesteps), len(tokens), ErrRaggedBatch)
	}
	n := len(tokens[0])
	for i, row := range tokens {
		if len(row) != n {
			return 0, fmt.Errorf("row %d has length %d, want %d: %w", i, len(row), n, ErrRaggedBatch)
		}
	}

	return n, nil
}
