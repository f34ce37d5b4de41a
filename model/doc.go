// SPDX-License-Identifier: MIT

// Package model declares the boundary to the neural sequence model: a
// Scorer maps a batch of token rows and per-row timesteps to a
// [batch, length, vocab] logits tensor. Decoders treat it as a synchronous,
// side-effect free call and validate the returned shape with Logits.Check.
package model
