// SPDX-License-Identifier: MIT

package scorer

import (
	"context"
	"fmt"

	"github.com/rostro36/evodiff/model"
)

// Constant returns the same logits row at every position regardless of
// the input. It stands in for a model in dry runs and tests.
type Constant struct {
	row []float64
}

// NewConstant copies row; its length is the vocabulary size.
func NewConstant(row []float64) (*Constant, error) {
	if len(row) == 0 {
		return nil, fmt.Errorf("NewConstant: empty row: %w", ErrOptionViolation)
	}

	return &Constant{row: append([]float64(nil), row...)}, nil
}

// Uniform returns a Constant with zero logits over vocab symbols.
func Uniform(vocab int) (*Constant, error) {
	if vocab <= 0 {
		return nil, fmt.Errorf("Uniform(%d): %w", vocab, ErrOptionViolation)
	}

	return &Constant{row: make([]float64, vocab)}, nil
}

// Score implements model.Scorer.
func (c *Constant) Score(_ context.Context, _ model.ExecContext, tokens [][]int, timesteps []int) (*model.Logits, error) {
	if _, err := model.CheckBatch(tokens, timesteps); err != nil {
		return nil, err
	}
	lg := model.NewLogits(len(tokens), len(tokens[0]), len(c.row))
	for b := range tokens {
		for l := range tokens[b] {
			copy(lg.Row(b, l), c.row)
		}
	}

	return lg, nil
}

var (
	_ model.Scorer = (*Client)(nil)
	_ model.Scorer = (*Pooled)(nil)
	_ model.Scorer = (*Constant)(nil)
)
