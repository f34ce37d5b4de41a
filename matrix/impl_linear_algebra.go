// SPDX-License-Identifier: MIT
// Package matrix - matrix/vector kernels.
//
// Purpose:
//   - MatVec (y = m·x) and VecMulInto (y = xᵀ·m) with *Dense fast-paths.
//   - VecMulInto writes into a caller-owned buffer so per-step samplers can
//     reuse scratch space instead of allocating per position.
//
// Determinism:
//   - Fixed loop orders; no parallel reductions.

package matrix

// MatVec returns y = m·x where len(x) == m.Cols().
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c).
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	rows, cols := m.Rows(), m.Cols()
	y := make([]float64, rows)

	var (
		i, j    int
		acc, mv float64
	)
	// Fast-path: *Dense allows flat, row-major dot-products.
	if d, ok := m.(*Dense); ok {
		var base int
		for i = 0; i < rows; i++ {
			base = i * cols
			acc = 0
			for j = 0; j < cols; j++ {
				acc += d.data[base+j] * x[j]
			}
			y[i] = acc
		}
		return y, nil
	}
	for i = 0; i < rows; i++ {
		acc = 0
		for j = 0; j < cols; j++ {
			mv, _ = m.At(i, j)
			acc += mv * x[j]
		}
		y[i] = acc
	}

	return y, nil
}

// VecMulInto computes dst = xᵀ·m, i.e. dst[j] = Σ_i x[i]·m[i,j].
// For a row-stochastic m and a distribution x, dst is the distribution after
// one application of the kernel.
//
// Contracts:
//   - len(x) == m.Rows(), len(dst) == m.Cols(); dst must not alias x.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(r*c), zero allocations.
func VecMulInto(dst, x []float64, m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return matrixErrorf(opVecMul, err)
	}
	if err := ValidateVecLen(x, m.Rows()); err != nil {
		return matrixErrorf(opVecMul, err)
	}
	if err := ValidateVecLen(dst, m.Cols()); err != nil {
		return matrixErrorf(opVecMul, err)
	}
	rows, cols := m.Rows(), m.Cols()

	var (
		i, j   int
		xi, mv float64
	)
	for j = 0; j < cols; j++ {
		dst[j] = 0
	}
	if d, ok := m.(*Dense); ok {
		var base int
		for i = 0; i < rows; i++ {
			xi = x[i]
			if xi == 0 {
				continue // skip zero weights
			}
			base = i * cols
			for j = 0; j < cols; j++ {
				dst[j] += xi * d.data[base+j]
			}
		}
		return nil
	}
	for i = 0; i < rows; i++ {
		xi = x[i]
		if xi == 0 {
			continue
		}
		for j = 0; j < cols; j++ {
			mv, _ = m.At(i, j)
			dst[j] += xi * mv
		}
	}

	return nil
}

// ColumnInto copies column j of m into dst (len(dst) == m.Rows()).
// Errors: ErrNilMatrix, ErrOutOfRange, ErrDimensionMismatch.
// Complexity: O(r).
func ColumnInto(dst []float64, m Matrix, j int) error {
	if err := ValidateNotNil(m); err != nil {
		return matrixErrorf("ColumnInto", err)
	}
	if j < 0 || j >= m.Cols() {
		return matrixErrorf("ColumnInto", ErrOutOfRange)
	}
	if err := ValidateVecLen(dst, m.Rows()); err != nil {
		return matrixErrorf("ColumnInto", err)
	}
	if d, ok := m.(*Dense); ok {
		for i := 0; i < d.r; i++ {
			dst[i] = d.data[i*d.c+j]
		}
		return nil
	}
	for i := 0; i < m.Rows(); i++ {
		dst[i], _ = m.At(i, j)
	}

	return nil
}
