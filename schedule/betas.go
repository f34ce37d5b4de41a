// SPDX-License-Identifier: MIT

package schedule

import (
	"fmt"
	"math"
)

// BetaKind names a noise schedule β_1..β_T.
type BetaKind string

const (
	// BetaLinear spaces β evenly between the configured start and end.
	BetaLinear BetaKind = "linear"

	// BetaSohlDickstein uses β_t = 1/(T-t+1); the last step fully mixes.
	BetaSohlDickstein BetaKind = "sohl-dickstein"

	// BetaExp uses exp(linspace(0, max, T)) normalised to sum to one.
	BetaExp BetaKind = "exp"

	// BetaCosine derives β from the cosine cumulative-retention curve.
	BetaCosine BetaKind = "cosine"
)

// Beta schedule defaults.
const (
	DefaultLinearStart = 1e-4
	DefaultLinearEnd   = 0.02
	DefaultExpMax      = 6.0
	DefaultCosineShift = 0.008
	maxCosineBeta      = 0.999
)

// ParseBetaKind maps a configuration string to a BetaKind.
func ParseBetaKind(s string) (BetaKind, error) {
	switch k := BetaKind(s); k {
	case BetaLinear, BetaSohlDickstein, BetaExp, BetaCosine:
		return k, nil
	}

	return "", fmt.Errorf("ParseBetaKind(%q): %w", s, ErrUnknownBeta)
}

// Betas returns β_1..β_T (index t-1) for the given kind using default
// parameters. Every β lies in (0, 1].
//
// Errors: ErrNonPositiveSteps, ErrUnknownBeta, ErrBetaRange.
// Complexity: O(T).
func Betas(kind BetaKind, steps int) ([]float64, error) {
	o := DefaultOptions()

	return betas(kind, steps, o)
}

func betas(kind BetaKind, steps int, o Options) ([]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("Betas: T=%d: %w", steps, ErrNonPositiveSteps)
	}

	out := make([]float64, steps)
	var i int
	switch kind {
	case BetaLinear:
		for i = 0; i < steps; i++ {
			out[i] = linspaceAt(o.LinearStart, o.LinearEnd, steps, i)
		}
	case BetaSohlDickstein:
		for i = 0; i < steps; i++ {
			out[i] = 1 / float64(steps-i)
		}
	case BetaExp:
		var sum float64
		for i = 0; i < steps; i++ {
			out[i] = math.Exp(linspaceAt(0, o.ExpMax, steps, i))
			sum += out[i]
		}
		for i = 0; i < steps; i++ {
			out[i] /= sum
		}
	case BetaCosine:
		f := func(t int) float64 {
			x := (float64(t)/float64(steps) + o.CosineShift) / (1 + o.CosineShift)
			c := math.Cos(x * math.Pi / 2)

			return c * c
		}
		for i = 0; i < steps; i++ {
			out[i] = math.Min(1-f(i+1)/f(i), maxCosineBeta)
		}
	default:
		return nil, fmt.Errorf("Betas(%q): %w", kind, ErrUnknownBeta)
	}

	for i = 0; i < steps; i++ {
		if !(out[i] > 0 && out[i] <= 1) {
			return nil, fmt.Errorf("Betas(%q): β_%d=%g: %w", kind, i+1, out[i], ErrBetaRange)
		}
	}

	return out, nil
}

// linspaceAt is element i of n evenly spaced points over [lo, hi].
func linspaceAt(lo, hi float64, n, i int) float64 {
	if n == 1 {
		return lo
	}

	return lo + (hi-lo)*float64(i)/float64(n-1)
}
