// SPDX-License-Identifier: MIT

// RNG utilities shared by the decoders and the sampling engine.
//
// Goals:
//   - Determinism: same seed ⇒ identical sequences, regardless of how batches
//     are scheduled across workers.
//   - Encapsulation: a single RNG factory; no time-based sources.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Every decoding run owns its own
//     stream, created with StreamRNG.

package decode

import "math/rand"

// DefaultSeed is used when callers pass seed == 0.
const DefaultSeed int64 = 1

// NewRNG returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ DefaultSeed; otherwise the seed is used verbatim.
// Complexity: O(1).
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}

	return rand.New(rand.NewSource(seed))
}

// DeriveSeed mixes a parent seed and a stream identifier with a
// SplitMix64-style finalizer, so neighbouring streams are decorrelated.
// Complexity: O(1).
func DeriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// StreamRNG returns the independent stream number `stream` of a run seeded
// with seed. Unlike drawing child seeds from a shared parent RNG, the result
// depends only on (seed, stream), never on the order streams are created.
// Complexity: O(1).
func StreamRNG(seed int64, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}

	return rand.New(rand.NewSource(DeriveSeed(seed, stream)))
}

// shuffleIntsInPlace performs an in-place Fisher–Yates shuffle of a.
// Complexity: O(n) time, O(1) extra space.
func shuffleIntsInPlace(a []int, rng *rand.Rand) {
	n := len(a)
	if n <= 1 {
		return
	}

	var i, j int
	for i = n - 1; i > 0; i-- {
		j = rng.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// permRange returns a permutation of 0..n-1 drawn from rng.
// Complexity: O(n) time, O(n) space.
func permRange(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	var i int
	for i = 0; i < n; i++ {
		p[i] = i
	}
	shuffleIntsInPlace(p, rng)

	return p
}
