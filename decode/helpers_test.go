package decode_test

import (
	"context"
	"math"
	"testing"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/model"
	"github.com/stretchr/testify/require"
)

// veryNegative pushes a logit's softmax weight to exactly zero.
const veryNegative = -1e9

// abcd returns the four-symbol test alphabet with reserved trailing symbols.
func abcd(t *testing.T, reserved int) *alphabet.Alphabet {
	t.Helper()
	a, err := alphabet.New("ABCD", reserved)
	require.NoError(t, err)

	return a
}

// fillScorer returns a scorer whose logits at (batch b, position l) are
// produced by fn into a vocab-wide row initialised to zero.
func fillScorer(vocab int, fn func(call, b, l int, tokens [][]int, row []float64)) model.Scorer {
	call := 0

	return model.ScorerFunc(func(_ context.Context, _ model.ExecContext, tokens [][]int, timesteps []int) (*model.Logits, error) {
		if _, err := model.CheckBatch(tokens, timesteps); err != nil {
			return nil, err
		}
		lg := model.NewLogits(len(tokens), len(tokens[0]), vocab)
		for b := range tokens {
			for l := range tokens[b] {
				fn(call, b, l, tokens, lg.Row(b, l))
			}
		}
		call++

		return lg, nil
	})
}

// oneHotScorer always predicts sym with certainty.
func oneHotScorer(vocab, sym int) model.Scorer {
	return fillScorer(vocab, func(_, _, _ int, _ [][]int, row []float64) {
		for i := range row {
			row[i] = veryNegative
		}
		row[sym] = 0
	})
}

// uniformScorer returns all-zero logits.
func uniformScorer(vocab int) model.Scorer {
	return fillScorer(vocab, func(int, int, int, [][]int, []float64) {})
}

// nanScorer poisons batch row bad on the first call only.
func nanScorer(vocab, bad int) model.Scorer {
	return fillScorer(vocab, func(call, b, _ int, _ [][]int, row []float64) {
		if call == 0 && b == bad {
			for i := range row {
				row[i] = math.NaN()
			}
		}
	})
}
