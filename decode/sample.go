// SPDX-License-Identifier: MIT

package decode

import (
	"math"
	"math/rand"
)

// softmaxInto writes softmax(logits) into dst (len(dst) == len(logits)).
// It subtracts the maximum for stability. NaN logits, or all -Inf logits,
// yield NaN entries that mass() later reports as degenerate.
// Complexity: O(n).
func softmaxInto(dst, logits []float64) {
	maxV := math.Inf(-1)
	for _, v := range logits {
		if v > maxV || math.IsNaN(v) {
			maxV = v
		}
	}
	var sum float64
	for i, v := range logits {
		dst[i] = math.Exp(v - maxV)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
}

// mass returns Σp and whether p is a usable (unnormalised) distribution:
// every entry finite and ≥ 0, total finite and > 0.
// Complexity: O(n).
func mass(p []float64) (float64, bool) {
	var sum float64
	for _, v := range p {
		if !(v >= 0) || math.IsInf(v, 0) {
			return math.NaN(), false
		}
		sum += v
	}

	return sum, sum > 0 && !math.IsInf(sum, 0)
}

// normalize scales p to sum to one in place. It reports false, leaving p
// untouched, when p is degenerate.
func normalize(p []float64) (float64, bool) {
	sum, ok := mass(p)
	if !ok {
		return sum, false
	}
	for i := range p {
		p[i] /= sum
	}

	return sum, true
}

// categorical draws an index with probability proportional to p, which must
// already be validated by mass. sum is Σp.
// Complexity: O(n).
func categorical(rng *rand.Rand, p []float64, sum float64) int {
	u := rng.Float64() * sum
	var acc float64
	last := 0
	for i, v := range p {
		if v <= 0 {
			continue
		}
		acc += v
		last = i
		if u < acc {
			return i
		}
	}

	return last // u landed in the rounding gap at the top
}

// sample validates p and draws from it; on a degenerate p it returns the
// offending mass and false.
func sample(rng *rand.Rand, p []float64) (int, float64, bool) {
	sum, ok := mass(p)
	if !ok {
		return -1, sum, false
	}

	return categorical(rng, p, sum), sum, true
}
