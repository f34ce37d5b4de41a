// SPDX-License-Identifier: MIT
// Package matrix: numeric policy defaults.
//
// Purpose:
//   - Single source of truth for the tolerances used by stochastic-matrix checks.
//   - Keep Dense's NaN/Inf guard switchable without hidden globals per instance.

package matrix

const (
	// DefaultValidateNaNInf enables NaN/Inf rejection in Dense.Set.
	DefaultValidateNaNInf = true

	// DefaultStochasticTol is the row-sum tolerance used by ValidateRowStochastic
	// callers that do not carry their own policy.
	DefaultStochasticTol = 1e-9

	// DefaultSinkhornTol is the max |row/col sum - 1| accepted by Sinkhorn.
	DefaultSinkhornTol = 1e-12

	// DefaultSinkhornIter bounds Sinkhorn alternations.
	DefaultSinkhornIter = 100000
)
