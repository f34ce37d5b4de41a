package matrix_test

import (
	"testing"

	"github.com/rostro36/evodiff/matrix"
	"github.com/stretchr/testify/require"
)

// dense is a small fixture helper: rows given as slices.
func dense(t *testing.T, rows ...[]float64) *matrix.Dense {
	t.Helper()
	var flat []float64
	for _, r := range rows {
		flat = append(flat, r...)
	}
	m, err := matrix.NewDenseFrom(len(rows), len(rows[0]), flat)
	require.NoError(t, err)

	return m
}

// TestMulKnownProduct checks a hand-computed 2×3 · 3×2 product.
func TestMulKnownProduct(t *testing.T) {
	a := dense(t, []float64{1, 2, 3}, []float64{4, 5, 6})
	b := dense(t, []float64{7, 8}, []float64{9, 10}, []float64{11, 12})

	got, err := matrix.Mul(a, b)
	require.NoError(t, err)
	want := dense(t, []float64{58, 64}, []float64{139, 154})

	ok, err := matrix.AllClose(got, want, 0, 1e-12)
	require.NoError(t, err)
	require.True(t, ok, "got:\n%v", got)
}

// TestMulDimensionMismatch ensures incompatible inner dimensions are rejected.
func TestMulDimensionMismatch(t *testing.T) {
	a := dense(t, []float64{1, 2})
	b := dense(t, []float64{1, 2})

	_, err := matrix.Mul(a, b)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.Mul(nil, b)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestMulIdentity verifies I·A == A.
func TestMulIdentity(t *testing.T) {
	a := dense(t, []float64{0.2, 0.8}, []float64{0.6, 0.4})
	I, err := matrix.NewIdentity(2)
	require.NoError(t, err)

	got, err := matrix.Product(I, a)
	require.NoError(t, err)
	ok, err := matrix.AllClose(got, a, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)
}

// TestChainProductMatchesPairwise verifies the chain helper equals manual products.
func TestChainProductMatchesPairwise(t *testing.T) {
	a := dense(t, []float64{0.9, 0.1}, []float64{0.2, 0.8})
	b := dense(t, []float64{0.5, 0.5}, []float64{0.3, 0.7})
	c := dense(t, []float64{1, 0}, []float64{0.4, 0.6})

	ab, err := matrix.Mul(a, b)
	require.NoError(t, err)
	abc, err := matrix.Mul(ab, c)
	require.NoError(t, err)

	chain, err := matrix.ChainProduct(a, b, c)
	require.NoError(t, err)
	ok, err := matrix.AllClose(chain, abc, 0, 1e-15)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = matrix.ChainProduct()
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestTransposeAndAdd exercises the remaining binary helpers.
func TestTransposeAndAdd(t *testing.T) {
	a := dense(t, []float64{1, 2, 3}, []float64{4, 5, 6})

	at, err := matrix.T(a)
	require.NoError(t, err)
	require.Equal(t, 3, at.Rows())
	v, _ := at.At(2, 1)
	require.Equal(t, 6.0, v)

	sum, err := matrix.Add(a, a)
	require.NoError(t, err)
	v, _ = sum.At(1, 2)
	require.Equal(t, 12.0, v)

	_, err = matrix.Add(a, at)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	half, err := matrix.Scale(a, 0.5)
	require.NoError(t, err)
	v, _ = half.At(0, 1)
	require.Equal(t, 1.0, v)
}

// TestVecMulInto propagates a distribution through a kernel.
func TestVecMulInto(t *testing.T) {
	q := dense(t, []float64{0.9, 0.1}, []float64{0.2, 0.8})
	dst := make([]float64, 2)

	require.NoError(t, matrix.VecMulInto(dst, []float64{0.5, 0.5}, q))
	require.InDelta(t, 0.55, dst[0], 1e-15)
	require.InDelta(t, 0.45, dst[1], 1e-15)

	err := matrix.VecMulInto(dst, []float64{1}, q)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestColumnInto reads a column into a caller buffer.
func TestColumnInto(t *testing.T) {
	q := dense(t, []float64{0.9, 0.1}, []float64{0.2, 0.8})
	col := make([]float64, 2)

	require.NoError(t, matrix.ColumnInto(col, q, 1))
	require.Equal(t, []float64{0.1, 0.8}, col)
	require.ErrorIs(t, matrix.ColumnInto(col, q, 2), matrix.ErrOutOfRange)
}

// TestRowColSums checks the reduction facades.
func TestRowColSums(t *testing.T) {
	a := dense(t, []float64{1, 2}, []float64{3, 4})

	rs, err := matrix.RowSums(a)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 7}, rs)

	cs, err := matrix.ColSums(a)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 6}, cs)
}
