// SPDX-License-Identifier: MIT

// Package evodiff generates protein sequences from a trained sequence
// model. The model itself lives elsewhere; this module owns everything
// around it: the alphabet, the corruption schedules, the four decoding
// strategies, and the engine that runs them at scale.
//
// 🚀 What is inside?
//
//	• Alphabet: protein vocabulary with gap, stop, mask, start and pad
//	  specials, plus the embedded BLOSUM62 table
//	• Schedules: uniform and similarity-weighted Markov transition
//	  matrices Q_t with cached cumulative products Q̄_t
//	• Decoding: order-agnostic mask, discrete diffusion, autoregressive,
//	  and a reference baseline drawn from corpus marginals
//	• Engine: length sampling, batching, bounded workers, per-request
//	  failure isolation, metrics and tracing
//
// Packages:
//
//	matrix/   - dense float64 matrices, products, stochastic validators, Sinkhorn
//	alphabet/ - symbol tables, encode/decode, one-hot, BLOSUM62 kernel
//	schedule/ - beta schedules, Q_t / Q̄_t construction and diagnostics
//	model/    - Scorer interface, Logits tensor, ExecContext
//	decode/   - Strategy implementations and deterministic RNG streams
//	engine/   - sampling engine, length sources, Sink interface
//	scorer/   - HTTP model client, pooled and constant scorers
//	corpus/   - FASTA I/O, marginals, lengths, validation subsets
//	sink/     - FASTA/CSV output files and YAML run manifest
//	config/   - configuration, validation, viper loading, logger
//	cmd/protgen - the command-line tool
//
// Data flow of one run:
//
//	config ─► alphabet ─► schedule ─┐
//	                                ├─► decode.Strategy ─► engine ─► sink
//	corpus ─► marginals / lengths ──┘          ▲
//	                                           │
//	                              scorer (model.Scorer)
package evodiff
