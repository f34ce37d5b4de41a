// SPDX-License-Identifier: MIT

// Package corpus reads protein sequence corpora in FASTA format and derives
// the statistics the sampler consumes: empirical symbol marginals for the
// reference baseline, observed lengths for the length source, and random
// validation subsets.
package corpus
