package matrix_test

import (
	"math"
	"testing"

	"github.com/rostro36/evodiff/matrix"
	"github.com/stretchr/testify/require"
)

// TestValidateSquare distinguishes square and rectangular inputs.
func TestValidateSquare(t *testing.T) {
	sq, _ := matrix.NewDense(3, 3)
	rect, _ := matrix.NewDense(2, 3)

	require.NoError(t, matrix.ValidateSquareNonNil(sq))
	require.ErrorIs(t, matrix.ValidateSquareNonNil(rect), matrix.ErrNonSquare)
	require.ErrorIs(t, matrix.ValidateSquareNonNil(nil), matrix.ErrNilMatrix)
}

// TestValidateSymmetric covers the tolerance contract.
func TestValidateSymmetric(t *testing.T) {
	m := dense(t, []float64{1, 2}, []float64{2.0000001, 1})

	require.NoError(t, matrix.ValidateSymmetric(m, 1e-6))
	require.ErrorIs(t, matrix.ValidateSymmetric(m, 1e-9), matrix.ErrAsymmetry)
	require.ErrorIs(t, matrix.ValidateSymmetric(m, math.NaN()), matrix.ErrNaNInf)
}

// TestValidateRowStochastic rejects rows that do not sum to one or go negative.
func TestValidateRowStochastic(t *testing.T) {
	good := dense(t, []float64{0.25, 0.75}, []float64{1, 0})
	require.NoError(t, matrix.ValidateRowStochastic(good, 1e-12))

	short := dense(t, []float64{0.25, 0.7}, []float64{1, 0})
	require.ErrorIs(t, matrix.ValidateRowStochastic(short, 1e-6), matrix.ErrNotStochastic)

	negative := dense(t, []float64{1.5, -0.5}, []float64{1, 0})
	require.ErrorIs(t, matrix.ValidateRowStochastic(negative, 1e-6), matrix.ErrNotStochastic)
}
