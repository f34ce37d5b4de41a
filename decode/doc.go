// SPDX-License-Identifier: MIT

// Package decode turns a sequence-to-logits model into finished sequences.
//
// Four decoders form a closed set behind the Strategy interface:
//
//   - MaskDecoder: order-agnostic mask-and-reveal. Starts fully masked and
//     reveals one position per step; the first position is uniform, later
//     ones follow a per-row random permutation or model confidence.
//   - DiffusionDecoder: reverses a schedule.Schedule from t = T-1 to 1 using
//     the posterior q(x_{t-1} | x_t, x̃₀) marginalised over the model's
//     belief p̃(x̃₀ | x_t). The last draw excludes reserved symbols.
//   - AutoregressiveDecoder: left to right from the start symbol until stop
//     or MaxLength; truncation is flagged on the Result.
//   - ReferenceDecoder: i.i.d. draws from supplied marginals, no model.
//
// Run drives a Strategy over a batch of independent rows that share each
// model query. Steps are strictly sequential and the context is checked
// between them. Per-row numerical failures (DegenerateError) are isolated
// in Result.Err; scorer errors and shape mismatches fail the batch.
//
// Decoders are immutable after construction, so one Strategy may drive
// several batches concurrently as long as each owns its State; option hooks
// must then be safe for concurrent use.
//
// Randomness comes only from the *rand.Rand passed to Begin; StreamRNG
// derives reproducible per-batch streams from one run seed.
package decode
