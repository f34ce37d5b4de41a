// Package matrix offers dense row-major float64 matrices and the small set of
// kernels needed to build and check Markov transition kernels.
//
// The matrix package provides:
//
//   - Dense with bounds-checked At/Set and an explicit NaN/Inf policy.
//   - Mul, Transpose, Add, Scale and ChainProduct for kernel products.
//   - MatVec / VecMulInto / ColumnInto for per-position posterior math
//     without per-step allocation.
//   - ValidateRowStochastic, ValidateSymmetric and friends as the single
//     source of truth for structural checks.
//   - NormalizeRowsL1, SoftmaxRows and Sinkhorn to turn score tables into
//     (doubly) stochastic kernels.
//
// All public functions return sentinel errors from errors.go, wrapped with an
// operation tag; callers branch with errors.Is.
package matrix
