package matrix_test

import (
	"testing"

	"github.com/rostro36/evodiff/matrix"
	"github.com/stretchr/testify/require"
)

// TestNormalizeRowsL1 turns counts into probability rows and keeps the norms.
func TestNormalizeRowsL1(t *testing.T) {
	m := dense(t, []float64{1, 3}, []float64{2, 2})

	p, norms, err := matrix.NormalizeRowsL1(m)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 4}, norms)
	require.NoError(t, matrix.ValidateRowStochastic(p, 1e-15))
	v, _ := p.At(0, 1)
	require.Equal(t, 0.75, v)
}

// TestNormalizeRowsL1ZeroRow rejects a row with no mass.
func TestNormalizeRowsL1ZeroRow(t *testing.T) {
	m := dense(t, []float64{1, 3}, []float64{0, 0})

	_, _, err := matrix.NormalizeRowsL1(m)
	require.ErrorIs(t, err, matrix.ErrZeroRow)
}

// TestSoftmaxRowsStable checks large logits do not overflow and rows sum to one.
func TestSoftmaxRowsStable(t *testing.T) {
	m := dense(t, []float64{1000, 1000}, []float64{0, 0}, []float64{-3, 7})

	p, err := matrix.SoftmaxRows(m)
	require.NoError(t, err)
	require.NoError(t, matrix.ValidateRowStochastic(p, 1e-12))
	v, _ := p.At(0, 0)
	require.InDelta(t, 0.5, v, 1e-12)
}

// TestSinkhornDoublyStochastic balances a positive symmetric matrix.
func TestSinkhornDoublyStochastic(t *testing.T) {
	m := dense(t,
		[]float64{4, 1, 2},
		[]float64{1, 5, 1},
		[]float64{2, 1, 6},
	)

	ds, err := matrix.Sinkhorn(m, 1e-12, 10000)
	require.NoError(t, err)
	require.NoError(t, matrix.ValidateRowStochastic(ds, 1e-10))

	dsT, err := matrix.T(ds)
	require.NoError(t, err)
	require.NoError(t, matrix.ValidateRowStochastic(dsT, 1e-10)) // columns too
	require.NoError(t, matrix.ValidateSymmetric(ds, 1e-8))       // symmetric input stays symmetric
}

// TestSinkhornRejectsNonPositive enforces the positivity precondition.
func TestSinkhornRejectsNonPositive(t *testing.T) {
	m := dense(t, []float64{1, 0}, []float64{0, 1})

	_, err := matrix.Sinkhorn(m, 1e-12, 100)
	require.ErrorIs(t, err, matrix.ErrNotStochastic)
}
