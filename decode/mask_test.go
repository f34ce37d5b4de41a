package decode_test

import (
	"context"
	"testing"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/decode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMaskSinglePositionColdStart: L=1 with uniform logits must reveal the
// only position with a generatable symbol.
func TestMaskSinglePositionColdStart(t *testing.T) {
	a := alphabet.Protein()
	var reveals [][3]int
	d, err := decode.NewMask(a, uniformScorer(a.Size()),
		decode.WithOnReveal(func(row, pos, sym int) { reveals = append(reveals, [3]int{row, pos, sym}) }))
	require.NoError(t, err)

	for seed := int64(1); seed <= 25; seed++ {
		reveals = reveals[:0]
		res, err := decode.Run(context.Background(), d, 1, 1, decode.NewRNG(seed))
		require.NoError(t, err)
		require.Len(t, reveals, 1)
		assert.Equal(t, 0, reveals[0][1])

		require.NoError(t, res[0].Err)
		require.Len(t, res[0].Tokens, 1)
		id := res[0].Tokens[0]
		assert.True(t, a.IsGeneratable(id), "symbol %d", id)
		assert.NotContains(t, []int{a.MaskID(), a.PadID(), a.StartID(), a.StopID()}, id)
	}
}

// TestMaskRevealsEachPositionOnce covers both position policies.
func TestMaskRevealsEachPositionOnce(t *testing.T) {
	a := alphabet.Protein()
	const rows, length = 3, 20

	for _, policy := range []decode.PositionPolicy{decode.PositionRandom, decode.PositionConfident} {
		t.Run(string(policy), func(t *testing.T) {
			counts := make([][]int, rows)
			for r := range counts {
				counts[r] = make([]int, length)
			}
			sc := fillScorer(a.Size(), func(call, _, l int, tokens [][]int, row []float64) {
				row[(l+call)%a.Generatable()] = 2
			})
			d, err := decode.NewMask(a, sc,
				decode.WithPositionPolicy(policy),
				decode.WithOnReveal(func(row, pos, _ int) { counts[row][pos]++ }))
			require.NoError(t, err)

			res, err := decode.Run(context.Background(), d, rows, length, decode.NewRNG(42))
			require.NoError(t, err)
			for r := 0; r < rows; r++ {
				for pos := 0; pos < length; pos++ {
					assert.Equal(t, 1, counts[r][pos], "row %d position %d", r, pos)
				}
				require.NoError(t, res[r].Err)
				assert.Equal(t, length, res[r].Steps)
				assert.NotContains(t, res[r].Tokens, a.MaskID())
			}
		})
	}
}

// TestMaskRevealedNeverResampled checks a revealed token is never changed.
func TestMaskRevealedNeverResampled(t *testing.T) {
	a := abcd(t, 0)
	d, err := decode.NewMask(a, uniformScorer(a.Size()))
	require.NoError(t, err)

	st, err := d.Begin(1, 8, decode.NewRNG(9))
	require.NoError(t, err)

	fixed := map[int]int{}
	for !st.Done() {
		_, err = d.Next(context.Background(), st)
		require.NoError(t, err)
		toks := st.Tokens(0)
		for pos, sym := range fixed {
			assert.Equal(t, sym, toks[pos])
		}
		for pos, sym := range toks {
			if sym != a.MaskID() {
				fixed[pos] = sym
			}
		}
		assert.Len(t, fixed, st.Step()) // one new reveal per step
	}

	_, err = d.Next(context.Background(), st)
	require.ErrorIs(t, err, decode.ErrFinished)
}

// TestMaskRowsUseOwnOrder checks each row of a batch gets its own order.
func TestMaskRowsUseOwnOrder(t *testing.T) {
	a := alphabet.Protein()
	const rows, length = 4, 24
	orders := make([][]int, rows)
	d, err := decode.NewMask(a, uniformScorer(a.Size()),
		decode.WithOnReveal(func(row, pos, _ int) { orders[row] = append(orders[row], pos) }))
	require.NoError(t, err)

	_, err = decode.Run(context.Background(), d, rows, length, decode.NewRNG(1))
	require.NoError(t, err)

	distinct := 0
	for r := 1; r < rows; r++ {
		if !assert.ObjectsAreEqual(orders[0], orders[r]) {
			distinct++
		}
	}
	assert.Equal(t, rows-1, distinct)
}

// TestMaskConfidentOrder reveals the most confident masked position first
// once the cold start is done.
func TestMaskConfidentOrder(t *testing.T) {
	a := abcd(t, 0)
	const length = 6
	// Confidence grows with the position index.
	sc := fillScorer(a.Size(), func(_, _, l int, _ [][]int, row []float64) {
		row[0] = float64(l)
	})
	var order []int
	d, err := decode.NewMask(a, sc,
		decode.WithPositionPolicy(decode.PositionConfident),
		decode.WithOnReveal(func(_, pos, _ int) { order = append(order, pos) }))
	require.NoError(t, err)

	_, err = decode.Run(context.Background(), d, 1, length, decode.NewRNG(4))
	require.NoError(t, err)
	require.Len(t, order, length)

	// After the cold start, remaining positions come highest index first.
	want := make([]int, 0, length-1)
	for pos := length - 1; pos >= 0; pos-- {
		if pos != order[0] {
			want = append(want, pos)
		}
	}
	assert.Equal(t, want, order[1:])
}

// TestMaskRepetitionPenalty: with two equiprobable symbols and a huge
// penalty, the second reveal of a length-2 sequence avoids its neighbour.
func TestMaskRepetitionPenalty(t *testing.T) {
	a, err := alphabet.New("AB", 0)
	require.NoError(t, err)
	d, err := decode.NewMask(a, uniformScorer(a.Size()), decode.WithPenalty(1e12))
	require.NoError(t, err)

	for seed := int64(1); seed <= 40; seed++ {
		res, err := decode.Run(context.Background(), d, 1, 2, decode.NewRNG(seed))
		require.NoError(t, err)
		assert.Contains(t, []string{"AB", "BA"}, res[0].Text, "seed %d", seed)
	}
}

// TestMaskOptionsAndRequests covers validation paths.
func TestMaskOptionsAndRequests(t *testing.T) {
	a := abcd(t, 0)
	sc := uniformScorer(a.Size())

	_, err := decode.NewMask(a, sc, decode.WithPenalty(0.5))
	require.ErrorIs(t, err, decode.ErrOptionViolation)

	_, err = decode.NewMask(a, sc, decode.WithPositionPolicy("left-to-right"))
	require.ErrorIs(t, err, decode.ErrOptionViolation)

	_, err = decode.NewMask(nil, sc)
	require.ErrorIs(t, err, decode.ErrMissingDependency)

	d, err := decode.NewMask(a, sc)
	require.NoError(t, err)
	_, err = decode.Run(context.Background(), d, 1, 0, nil)
	require.ErrorIs(t, err, decode.ErrInvalidLength)
	_, err = decode.Run(context.Background(), d, 0, 5, nil)
	require.ErrorIs(t, err, decode.ErrInvalidRows)
}
