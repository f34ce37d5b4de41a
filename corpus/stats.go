// SPDX-License-Identifier: MIT

package corpus

import (
	"fmt"
	"math/rand"

	"github.com/rostro36/evodiff/alphabet"
)

// Marginals estimates the per-symbol frequency of the standard symbols of a
// over recs. Symbols outside the standard set (gaps, specials) are ignored;
// characters unknown to a are an error. The result has a.K() entries and
// sums to 1.
// Complexity: O(total residues).
func Marginals(a *alphabet.Alphabet, recs []Record) ([]float64, error) {
	var (
		counts = make([]float64, a.K())
		total  float64
		ids    []int
		err    error
	)
	for _, rec := range recs {
		if ids, err = a.Encode(rec.Seq); err != nil {
			return nil, fmt.Errorf("Marginals: %s: %w", rec.Name, err)
		}
		for _, id := range ids {
			if a.IsStandard(id) {
				counts[id]++
				total++
			}
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("Marginals: %w", ErrEmptyCorpus)
	}
	for i := range counts {
		counts[i] /= total
	}

	return counts, nil
}

// Lengths returns the sequence length of every record, in order.
func Lengths(recs []Record) []int {
	out := make([]int, len(recs))
	for i, rec := range recs {
		out[i] = len([]rune(rec.Seq))
	}

	return out
}

// Subset draws n distinct records uniformly at random, in draw order.
// Complexity: O(len(recs)).
func Subset(recs []Record, n int, rng *rand.Rand) ([]Record, error) {
	if n <= 0 || n > len(recs) {
		return nil, fmt.Errorf("Subset(%d of %d): %w", n, len(recs), ErrSubsetSize)
	}
	perm := rng.Perm(len(recs))
	out := make([]Record, n)
	for i := range out {
		out[i] = recs[perm[i]]
	}

	return out, nil
}
