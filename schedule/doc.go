// SPDX-License-Identifier: MIT

// Package schedule builds discrete-diffusion corruption schedules.
//
// A schedule over K symbols and T steps holds, for t = 1..T,
//
//	Q_t = (1-β_t)·I + β_t·B        single-step kernel
//	Q̄_t = Q_1·Q_2·…·Q_t            cumulative kernel, Q̄_0 = I
//
// where B is either the uniform matrix 1/K (Uniform family) or a doubly
// stochastic similarity kernel such as the BLOSUM62-derived one from
// package alphabet (Similarity family). β comes from one of the linear,
// sohl-dickstein, exp or cosine schedules.
//
// Q̄_t is computed once in Build and cached. Diagnose recomputes each
// cumulative kernel by direct chain multiplication so the cache can be
// audited.
//
// Build fails fast on T ≤ 0 or K ≤ 1; a built Schedule is immutable and safe
// for concurrent readers. The decoding hot path uses ForwardColumnInto and
// PropagateInto, which read the cached kernels without allocating.
package schedule
