// SPDX-License-Identifier: MIT
// Package matrix - element-wise micro-kernels shared by statistics routines.
//
// Purpose:
//   - ewScaleRows / ewScaleCols: diagonal scaling without building diagonal matrices.
//   - ewAllClose: tolerance comparison with a flat fast-path for *Dense.
//
// Determinism:
//   - Fixed i→j traversal; no randomness; results are fresh copies.

package matrix

import "math"

// ewScaleRows returns a copy of X with row i multiplied by scale[i].
// Complexity: O(r*c) time and memory.
func ewScaleRows(X Matrix, scale []float64) (*Dense, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf("ScaleRows", err)
	}
	if err := ValidateVecLen(scale, X.Rows()); err != nil {
		return nil, matrixErrorf("ScaleRows", err)
	}
	r, c := X.Rows(), X.Cols()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf("ScaleRows", err)
	}

	var (
		i, j int
		v    float64
	)
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			v, _ = X.At(i, j)
			out.data[i*c+j] = v * scale[i]
		}
	}

	return out, nil
}

// ewScaleColsInPlace multiplies column j of d by scale[j] in place.
// Internal helper for Sinkhorn; d is owned by the caller.
// Complexity: O(r*c).
func ewScaleColsInPlace(d *Dense, scale []float64) {
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			d.data[i*d.c+j] *= scale[j]
		}
	}
}

// ewAllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Complexity: O(r*c) time, O(1) space.
//
// Policy:
//   - a and b must be non-nil and have identical shapes.
//   - rtol, atol are treated as |rtol|, |atol| (negative values are normalized).
func ewAllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if err := validateFiniteScalar(rtol); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	if err := validateFiniteScalar(atol); err != nil {
		return false, matrixErrorf("AllClose", err)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateBinarySameShape(a, b); err != nil {
		return false, matrixErrorf("AllClose", err)
	}

	// Dense fast-path: operate over flat slices when both are *Dense.
	if da, okA := a.(*Dense); okA {
		if db, okB := b.(*Dense); okB {
			for idx := range da.data {
				if math.Abs(da.data[idx]-db.data[idx]) > atol+rtol*math.Abs(db.data[idx]) {
					return false, nil // early-exit on first violation
				}
			}
			return true, nil
		}
	}

	var av, bv float64
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, _ = a.At(i, j)
			bv, _ = b.At(i, j)
			if math.Abs(av-bv) > atol+rtol*math.Abs(bv) {
				return false, nil
			}
		}
	}

	return true, nil
}
