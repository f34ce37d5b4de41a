// SPDX-License-Identifier: MIT

// Package matrix provides universal operations on any Matrix implementation:
// element-wise addition, matrix multiplication, transpose and scalar scaling.
// All functions perform strict fail-fast validation and return wrapped
// sentinels on dimension mismatches.
package matrix

import "fmt"

// Operation name constants for unified error wrapping.
const (
	opAdd             = "Add"
	opMul             = "Mul"
	opTranspose       = "Transpose"
	opScale           = "Scale"
	opMatVec          = "MatVec"
	opVecMul          = "VecMul"
	opNormalizeRowsL1 = "NormalizeRowsL1"
	opSoftmaxRows     = "SoftmaxRows"
	opSinkhorn        = "Sinkhorn"
	opChainProduct    = "ChainProduct"
)

// matrixErrorf wraps an underlying error with the given tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Add returns a new Matrix containing the element-wise sum of a and b.
// Stage 1 (Validate): nil-checks and shape match.
// Stage 2 (Execute): fast-path for *Dense or fallback to interface.
// Complexity: O(r·c) time and memory.
func Add(a, b Matrix) (Matrix, error) {
	// Stage 1: Validate
	if err := ValidateBinarySameShape(a, b); err != nil {
		return nil, matrixErrorf(opAdd, err)
	}
	rows, cols := a.Rows(), a.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opAdd, err)
	}

	// Stage 2: Dense fast-path over flat slices
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			for k := range res.data {
				res.data[k] = da.data[k] + db.data[k]
			}
			return res, nil
		}
	}

	var (
		i, j   int // loop iterators
		av, bv float64
	)
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			av, _ = a.At(i, j)           // safe: bounds ensured
			bv, _ = b.At(i, j)           // safe: same shape
			res.data[i*cols+j] = av + bv // direct write into result
		}
	}

	return res, nil
}

// Mul performs standard matrix multiplication of a and b (a × b).
// Stage 1 (Validate): nil-check and inner-dimension match.
// Stage 2 (Prepare): allocate result Dense.
// Stage 3 (Execute): i-k-j loop, with fast-path for *Dense.
// Complexity: O(r*n*c) time and O(r*c) memory.
func Mul(a, b Matrix) (Matrix, error) {
	// Stage 1: Validate inputs
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	// Stage 2: Allocate result Dense
	aRows, aCols, bCols := a.Rows(), a.Cols(), b.Cols()
	res, err := NewDense(aRows, bCols)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, j, k         int // loop iterators
		av, bv, current float64
	)
	// Stage 3: Fast-path for two Dense matrices
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			// da.data layout: i*aCols + k
			// db.data layout: k*bCols + j
			var rowOffsetA, rowOffsetB, rowOffsetR int
			for i = 0; i < aRows; i++ {
				rowOffsetA = i * aCols
				rowOffsetR = i * bCols
				for k = 0; k < aCols; k++ {
					av = da.data[rowOffsetA+k]
					if av == 0 {
						continue // skip zero for performance
					}
					rowOffsetB = k * bCols
					for j = 0; j < bCols; j++ {
						res.data[rowOffsetR+j] += av * db.data[rowOffsetB+j]
					}
				}
			}
			return res, nil
		}
	}

	// Fallback: generic interface triple-loop (i-j-k)
	for i = 0; i < aRows; i++ {
		for j = 0; j < bCols; j++ {
			current = 0.0
			for k = 0; k < aCols; k++ {
				av, _ = a.At(i, k)
				if av == 0 {
					continue
				}
				bv, _ = b.At(k, j)
				current += av * bv // accumulate product
			}
			res.data[i*bCols+j] = current
		}
	}

	return res, nil
}

// Transpose returns a new Matrix where rows and columns of m are swapped.
// Complexity: O(r·c) time and memory.
func Transpose(m Matrix) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(cols, rows)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	var (
		i, j int
		v    float64
	)
	if d, ok := m.(*Dense); ok {
		for i = 0; i < rows; i++ {
			for j = 0; j < cols; j++ {
				res.data[j*rows+i] = d.data[i*cols+j]
			}
		}
		return res, nil
	}
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			v, _ = m.At(i, j)
			res.data[j*rows+i] = v
		}
	}

	return res, nil
}

// Scale returns alpha*m as a new matrix.
// Complexity: O(r·c) time and memory.
func Scale(m Matrix, alpha float64) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	if err := validateFiniteScalar(alpha); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	rows, cols := m.Rows(), m.Cols()
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}

	var (
		i, j int
		v    float64
	)
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			v, _ = m.At(i, j)
			res.data[i*cols+j] = alpha * v
		}
	}

	return res, nil
}

// ChainProduct returns ms[0] × ms[1] × … × ms[n-1], multiplied left to right.
// It is the reference ("direct matrix-chain") product used to verify cached
// cumulative products.
// Errors: ErrDimensionMismatch for an empty chain or incompatible links.
// Complexity: O(n·k³) for n square k×k links.
func ChainProduct(ms ...Matrix) (Matrix, error) {
	if len(ms) == 0 {
		return nil, matrixErrorf(opChainProduct, ErrDimensionMismatch)
	}
	if err := ValidateNotNil(ms[0]); err != nil {
		return nil, matrixErrorf(opChainProduct, err)
	}
	acc := ms[0].Clone()

	var (
		i   int
		err error
	)
	for i = 1; i < len(ms); i++ {
		acc, err = Mul(acc, ms[i])
		if err != nil {
			return nil, matrixErrorf(opChainProduct, err)
		}
	}

	return acc, nil
}
