// SPDX-License-Identifier: MIT

// Package sink persists generated sequences. FASTA and CSV implement
// engine.Sink over any writer; Dir appends both formats to the standard
// files of an output directory, and WriteManifest records the run next to
// them as YAML.
package sink
