// SPDX-License-Identifier: MIT

// Package engine is the sampling engine: it runs one decode.Strategy for a
// requested number of outputs and hands each finished sequence to a Sink.
//
// Lengths for length-fixed strategies come from a LengthSource (Fixed,
// Empirical, or a CSV table via ReadLengthTable) and are drawn sequentially
// from the run seed. Requests of equal length are batched so that one model
// query serves several independent rows; batches run concurrently on a
// bounded errgroup, each with its own RNG stream, so the output of a run
// depends only on its seed and batch size, not on worker scheduling.
//
// A failure of one request (non-positive length, degenerate posterior,
// scorer or shape error of its batch) is recorded as a *RequestError in the
// Report and does not stop its siblings. Sink errors and cancellation abort
// the run.
//
// Each batch is traced with an OpenTelemetry span and counted in Prometheus
// collectors (see Metrics).
package engine
