// SPDX-License-Identifier: MIT
// Package matrix: public API facades.
//
// Purpose:
//   - Provide thin, well-documented entry points for common tasks across the package.
//   - Avoid any logic duplication; each facade delegates to the canonical implementation.
//
// Determinism & Policy:
//   - Facades never change the loop orders or numeric policy of underlying kernels.
//   - Validation is performed in the kernels; facades only compose or forward.

package matrix

import "math"

// ---------- Constructors ----------

// NewIdentity returns I_n (n×n identity; ones on the diagonal, zeros elsewhere).
// Complexity: O(n^2) zeroing (constructor) + O(n) diagonal writes.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewDense(n, n)
	if err != nil {
		return nil, err // propagate constructor error unchanged
	}
	for i := 0; i < n; i++ { // fixed i order guarantees reproducibility
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// NewFilled returns a rows×cols matrix with every entry equal to v.
// NewFilled(k, k, 1/k) is the uniform stationary kernel.
// Complexity: O(r*c).
func NewFilled(rows, cols int, v float64) (*Dense, error) {
	if err := validateFiniteScalar(v); err != nil {
		return nil, matrixErrorf("NewFilled", err)
	}
	d, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for k := range d.data {
		d.data[k] = v
	}

	return d, nil
}

// ---------- Linear Algebra (facades map 1:1 to kernels) ----------

// Product is an alias for Mul: matrix product a × b.
// Complexity: O(r*n*c).
func Product(a, b Matrix) (Matrix, error) { return Mul(a, b) }

// T is an alias for Transpose: returns mᵀ.
// Complexity: O(rc).
func T(m Matrix) (Matrix, error) { return Transpose(m) }

// ---------- Reductions ----------

// RowSums returns vector r where r[i] = sum_j m[i,j].
// Implementation: MatVec(m, ones(cols)). No custom loops.
// Complexity: O(rc).
func RowSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("RowSums", err)
	}
	ones := make([]float64, m.Cols())
	for j := range ones {
		ones[j] = 1.0 // neutral element for summation
	}

	return MatVec(m, ones)
}

// ColSums returns vector c where c[j] = sum_i m[i,j].
// Implementation: ones(rows)ᵀ · m via VecMulInto.
// Complexity: O(rc).
func ColSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf("ColSums", err)
	}
	ones := make([]float64, m.Rows())
	for i := range ones {
		ones[i] = 1.0
	}
	out := make([]float64, m.Cols())
	if err := VecMulInto(out, ones, m); err != nil {
		return nil, matrixErrorf("ColSums", err)
	}

	return out, nil
}

// ---------- Numeric compare ----------

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// Complexity: O(r*c). Deterministic.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	return ewAllClose(a, b, rtol, atol)
}

// MaxAbsDiff returns max_{i,j} |a[i,j] - b[i,j]|.
// Used by diagnostics to report how far a cached product drifts from the chain.
// Complexity: O(r*c).
func MaxAbsDiff(a, b Matrix) (float64, error) {
	if err := ValidateBinarySameShape(a, b); err != nil {
		return 0, matrixErrorf("MaxAbsDiff", err)
	}

	var (
		i, j   int
		av, bv float64
		worst  float64
	)
	for i = 0; i < a.Rows(); i++ {
		for j = 0; j < a.Cols(); j++ {
			av, _ = a.At(i, j)
			bv, _ = b.At(i, j)
			worst = math.Max(worst, math.Abs(av-bv))
		}
	}

	return worst, nil
}

// ---------- Stochastic helpers (thin wrappers → impl_statistics) ----------

// NormalizeRowsL1 returns a copy of X with each row scaled to L1-norm 1 plus
// the original row norms. Zero rows are rejected with ErrZeroRow.
// Complexity: O(rc).
func NormalizeRowsL1(X Matrix) (Matrix, []float64, error) { return normalizeRowsL1(X) }

// SoftmaxRows returns a row-stochastic copy: out[i,j] = exp(x_ij) / Σ_k exp(x_ik),
// computed with the per-row max subtracted for stability.
// Complexity: O(rc).
func SoftmaxRows(X Matrix) (Matrix, error) { return softmaxRows(X) }

// Sinkhorn balances a strictly positive square matrix into a doubly
// stochastic one by alternating row and column normalization.
// Complexity: O(iter · n²).
func Sinkhorn(X Matrix, tol float64, maxIter int) (Matrix, error) {
	return sinkhorn(X, tol, maxIter)
}
