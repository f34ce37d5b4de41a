// SPDX-License-Identifier: MIT
// Package matrix - stochastic normalizations.
//
// Purpose:
//   - normalizeRowsL1: turn non-negative score rows into probability rows.
//   - softmaxRows: turn arbitrary real score rows into probability rows.
//   - sinkhorn: balance a positive matrix into a doubly stochastic one, which
//     keeps a symmetric similarity kernel symmetric after normalization.
//
// Determinism:
//   - Fixed traversal orders; iteration counts depend only on the input.

package matrix

import (
	"fmt"
	"math"
)

// normalizeRowsL1 scales each row to have L1-norm == 1.
//
// Implementation:
//   - Stage 1: Validate X (non-nil).
//   - Stage 2: Compute per-row L1 norms deterministically.
//   - Stage 3: Reject zero rows (a probability row cannot be formed).
//   - Stage 4: Apply ewScaleRows to produce a normalized copy.
//
// Complexity:
//   - Time O(r*c), Space O(r*c) (+ O(r) norms).
func normalizeRowsL1(X Matrix) (Matrix, []float64, error) {
	// Stage 1 (Validate): ensure X is present.
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}
	r, c := X.Rows(), X.Cols()
	norms := make([]float64, r)
	scale := make([]float64, r)

	// Stage 2 (Execute): compute L1 norms per row.
	var (
		i, j int
		s, v float64
	)
	for i = 0; i < r; i++ {
		s = 0.0
		for j = 0; j < c; j++ {
			v, _ = X.At(i, j)
			s += math.Abs(v)
		}
		norms[i] = s
		// Stage 3: degenerate rows are an error, not a silent no-op.
		if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, nil, matrixErrorf(fmt.Sprintf("%s: row %d", opNormalizeRowsL1, i), ErrZeroRow)
		}
		scale[i] = 1.0 / s
	}

	// Stage 4 (Apply): scale rows via the canonical ew micro-kernel.
	Y, err := ewScaleRows(X, scale)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}

	return Y, norms, nil
}

// softmaxRows applies a numerically stable softmax to every row.
// Complexity: O(r*c).
func softmaxRows(X Matrix) (Matrix, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, matrixErrorf(opSoftmaxRows, err)
	}
	r, c := X.Rows(), X.Cols()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opSoftmaxRows, err)
	}

	var (
		i, j   int
		v, mx  float64
		s, e   float64
		offset int
	)
	for i = 0; i < r; i++ {
		offset = i * c
		mx = math.Inf(-1)
		for j = 0; j < c; j++ {
			v, _ = X.At(i, j)
			if v > mx {
				mx = v
			}
		}
		s = 0
		for j = 0; j < c; j++ {
			v, _ = X.At(i, j)
			e = math.Exp(v - mx) // shifted: largest term is exp(0)
			out.data[offset+j] = e
			s += e
		}
		for j = 0; j < c; j++ {
			out.data[offset+j] /= s
		}
	}

	return out, nil
}

// sinkhorn alternates row and column L1 normalization until both marginals
// are within tol of one.
//
// Contracts:
//   - X square, non-nil, strictly positive (Sinkhorn's theorem precondition).
//   - tol finite; maxIter > 0.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf, ErrNotStochastic (non-positive
// entry), ErrNoConvergence.
// Complexity: O(iter · n²).
func sinkhorn(X Matrix, tol float64, maxIter int) (Matrix, error) {
	if err := ValidateSquareNonNil(X); err != nil {
		return nil, matrixErrorf(opSinkhorn, err)
	}
	if err := validateFiniteScalar(tol); err != nil {
		return nil, matrixErrorf(opSinkhorn, err)
	}
	if maxIter <= 0 {
		return nil, matrixErrorf(opSinkhorn, ErrInvalidDimensions)
	}
	tol = math.Abs(tol)
	n := X.Rows()

	// Work on a private Dense copy.
	d, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opSinkhorn, err)
	}
	var (
		i, j, it int
		v        float64
	)
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			v, _ = X.At(i, j)
			if !(v > 0) || math.IsInf(v, 0) {
				return nil, matrixErrorf(opSinkhorn, ErrNotStochastic)
			}
			d.data[i*n+j] = v
		}
	}

	rowScale := make([]float64, n)
	colScale := make([]float64, n)
	var worst float64
	for it = 0; it < maxIter; it++ {
		// Row pass.
		for i = 0; i < n; i++ {
			v = 0
			for j = 0; j < n; j++ {
				v += d.data[i*n+j]
			}
			rowScale[i] = 1 / v
		}
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				d.data[i*n+j] *= rowScale[i]
			}
		}
		// Column pass.
		for j = 0; j < n; j++ {
			colScale[j] = 0
		}
		for i = 0; i < n; i++ {
			for j = 0; j < n; j++ {
				colScale[j] += d.data[i*n+j]
			}
		}
		for j = 0; j < n; j++ {
			colScale[j] = 1 / colScale[j]
		}
		ewScaleColsInPlace(d, colScale)

		// Convergence: columns are exact after the pass, so rows decide.
		worst = 0
		for i = 0; i < n; i++ {
			v = 0
			for j = 0; j < n; j++ {
				v += d.data[i*n+j]
			}
			worst = math.Max(worst, math.Abs(v-1))
		}
		if worst <= tol {
			return d, nil
		}
	}

	return nil, matrixErrorf(fmt.Sprintf("%s: residual %g after %d iterations", opSinkhorn, worst, maxIter), ErrNoConvergence)
}
