// SPDX-License-Identifier: MIT

package schedule

import (
	"fmt"
	"math"

	"github.com/rostro36/evodiff/matrix"
)

// Schedule is an immutable corruption schedule: single-step kernels Q_t and
// cumulative kernels Q̄_t = Q_1·…·Q_t for t = 1..T, with Q̄_0 = I.
// It is read-only after Build and safe to share across goroutines.
type Schedule struct {
	k      int
	steps  int
	family Family
	beta   BetaKind
	betas  []float64
	q      []*matrix.Dense // q[t-1] = Q_t
	qbar   []*matrix.Dense // qbar[t] = Q̄_t, qbar[0] = I
}

// Build constructs the schedule for K symbols and T steps.
//
// Stage 1 (Validate): K > 1, T > 0, options, kernel shape and stochasticity.
// Stage 2 (Kernels): Q_t = (1-β_t)·I + β_t·B where B is the uniform matrix
// 1/K or the similarity kernel.
// Stage 3 (Cumulate): Q̄_t = Q̄_{t-1}·Q_t, computed once and cached.
// Stage 4 (Check): every row of every Q_t and Q̄_t sums to 1 within tolerance.
//
// Errors: ErrTooFewSymbols, ErrNonPositiveSteps, ErrOptionViolation,
// ErrMissingKernel, ErrUnknownBeta, ErrBetaRange, matrix sentinels.
// Complexity: O(T·K³) time, O(T·K²) memory.
func Build(k, steps int, opts ...Option) (*Schedule, error) {
	// Stage 1: Validate
	if k <= 1 {
		return nil, fmt.Errorf("Build: K=%d: %w", k, ErrTooFewSymbols)
	}
	if steps <= 0 {
		return nil, fmt.Errorf("Build: T=%d: %w", steps, ErrNonPositiveSteps)
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, fmt.Errorf("Build: %w", o.err)
	}
	if o.Beta == "" {
		o.Beta = DefaultBeta(o.Family)
	}

	base, err := baseKernel(k, o)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	bs, err := betas(o.Beta, steps, o)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}

	s := &Schedule{
		k:      k,
		steps:  steps,
		family: o.Family,
		beta:   o.Beta,
		betas:  bs,
		q:      make([]*matrix.Dense, steps),
		qbar:   make([]*matrix.Dense, steps+1),
	}
	if s.qbar[0], err = matrix.NewIdentity(k); err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}

	var (
		t    int
		prod matrix.Matrix
	)
	for t = 1; t <= steps; t++ {
		// Stage 2: single-step kernel
		if s.q[t-1], err = mixKernel(base, bs[t-1]); err != nil {
			return nil, fmt.Errorf("Build: Q_%d: %w", t, err)
		}
		// Stage 3: cumulative product
		if prod, err = matrix.Mul(s.qbar[t-1], s.q[t-1]); err != nil {
			return nil, fmt.Errorf("Build: Q̄_%d: %w", t, err)
		}
		s.qbar[t] = prod.(*matrix.Dense)

		// Stage 4: numeric contract
		if err = matrix.ValidateRowStochastic(s.q[t-1], o.Tolerance); err != nil {
			return nil, fmt.Errorf("Build: Q_%d: %w", t, err)
		}
		if err = matrix.ValidateRowStochastic(s.qbar[t], o.Tolerance); err != nil {
			return nil, fmt.Errorf("Build: Q̄_%d: %w", t, err)
		}
	}

	return s, nil
}

// baseKernel returns the K×K matrix mixed in at every step.
func baseKernel(k int, o Options) (*matrix.Dense, error) {
	switch o.Family {
	case Uniform:
		return matrix.NewFilled(k, k, 1/float64(k))
	case Similarity:
		if o.Kernel == nil {
			return nil, ErrMissingKernel
		}
		if o.Kernel.Rows() != k || o.Kernel.Cols() != k {
			return nil, fmt.Errorf("kernel %dx%d for K=%d: %w", o.Kernel.Rows(), o.Kernel.Cols(), k, matrix.ErrDimensionMismatch)
		}
		if err := matrix.ValidateRowStochastic(o.Kernel, o.Tolerance); err != nil {
			return nil, fmt.Errorf("kernel: %w", err)
		}
		c := o.Kernel.Clone()
		if d, ok := c.(*matrix.Dense); ok {
			return d, nil
		}
		// Foreign Matrix implementation: copy element-wise.
		d, err := matrix.NewDense(k, k)
		if err != nil {
			return nil, err
		}
		var i, j int
		for i = 0; i < k; i++ {
			for j = 0; j < k; j++ {
				v, _ := o.Kernel.At(i, j)
				_ = d.Set(i, j, v)
			}
		}

		return d, nil
	}

	return nil, fmt.Errorf("%q: %w", o.Family, ErrUnknownFamily)
}

// mixKernel returns (1-β)·I + β·B.
func mixKernel(b *matrix.Dense, beta float64) (*matrix.Dense, error) {
	k := b.Rows()
	out, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, err
	}
	var (
		i, j int
		v    float64
	)
	for i = 0; i < k; i++ {
		for j = 0; j < k; j++ {
			v, _ = b.At(i, j)
			v *= beta
			if i == j {
				v += 1 - beta
			}
			if err = out.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// K returns the number of standard symbols the schedule acts on.
func (s *Schedule) K() int { return s.k }

// Steps returns T.
func (s *Schedule) Steps() int { return s.steps }

// Family returns the corruption family.
func (s *Schedule) Family() Family { return s.family }

// BetaKind returns the beta schedule used.
func (s *Schedule) BetaKind() BetaKind { return s.beta }

// Beta returns β_t for t in [1, T].
func (s *Schedule) Beta(t int) (float64, error) {
	if t < 1 || t > s.steps {
		return 0, fmt.Errorf("Beta(%d): %w", t, ErrStepOutOfRange)
	}

	return s.betas[t-1], nil
}

// Q returns a copy of the single-step kernel Q_t, t in [1, T].
func (s *Schedule) Q(t int) (matrix.Matrix, error) {
	if t < 1 || t > s.steps {
		return nil, fmt.Errorf("Q(%d): %w", t, ErrStepOutOfRange)
	}

	return s.q[t-1].Clone(), nil
}

// QBar returns a copy of the cumulative kernel Q̄_t, t in [0, T].
func (s *Schedule) QBar(t int) (matrix.Matrix, error) {
	if t < 0 || t > s.steps {
		return nil, fmt.Errorf("QBar(%d): %w", t, ErrStepOutOfRange)
	}

	return s.qbar[t].Clone(), nil
}

// ForwardColumnInto writes dst[b] = Q_t[b, x]: the probability of reaching
// the observed symbol x in one step from each symbol b. No allocation.
// Errors: ErrStepOutOfRange, matrix.ErrOutOfRange, matrix.ErrDimensionMismatch.
func (s *Schedule) ForwardColumnInto(dst []float64, t, x int) error {
	if t < 1 || t > s.steps {
		return fmt.Errorf("ForwardColumnInto(%d): %w", t, ErrStepOutOfRange)
	}
	if err := matrix.ColumnInto(dst, s.q[t-1], x); err != nil {
		return fmt.Errorf("ForwardColumnInto(%d): %w", t, err)
	}

	return nil
}

// PropagateInto writes dst = pᵀ·Q̄_t: the distribution after t corruption
// steps of a symbol drawn from p. t = 0 copies p. No allocation.
// Errors: ErrStepOutOfRange, matrix.ErrDimensionMismatch.
func (s *Schedule) PropagateInto(dst, p []float64, t int) error {
	if t < 0 || t > s.steps {
		return fmt.Errorf("PropagateInto(%d): %w", t, ErrStepOutOfRange)
	}
	if err := matrix.VecMulInto(dst, p, s.qbar[t]); err != nil {
		return fmt.Errorf("PropagateInto(%d): %w", t, err)
	}

	return nil
}

// StepReport summarises the numeric health of one step.
type StepReport struct {
	T              int     `json:"t" yaml:"t"`
	Beta           float64 `json:"beta" yaml:"beta"`
	QRowDeviation  float64 `json:"q_row_dev" yaml:"q_row_dev"`
	QBarRowDev     float64 `json:"qbar_row_dev" yaml:"qbar_row_dev"`
	ChainDeviation float64 `json:"chain_dev" yaml:"chain_dev"`
}

// Diagnose recomputes Q_1·…·Q_t by direct chain multiplication for every t
// and reports the largest deviation from the cached Q̄_t, together with the
// worst row-sum error of Q_t and Q̄_t.
// Complexity: O(T²·K³).
func (s *Schedule) Diagnose() ([]StepReport, error) {
	out := make([]StepReport, 0, s.steps)
	chain := make([]matrix.Matrix, 0, s.steps)
	var (
		t    int
		prod matrix.Matrix
		dev  float64
		err  error
	)
	for t = 1; t <= s.steps; t++ {
		chain = append(chain, s.q[t-1])
		if prod, err = matrix.ChainProduct(chain...); err != nil {
			return nil, fmt.Errorf("Diagnose: t=%d: %w", t, err)
		}
		if dev, err = matrix.MaxAbsDiff(prod, s.qbar[t]); err != nil {
			return nil, fmt.Errorf("Diagnose: t=%d: %w", t, err)
		}
		out = append(out, StepReport{
			T:              t,
			Beta:           s.betas[t-1],
			QRowDeviation:  rowDeviation(s.q[t-1]),
			QBarRowDev:     rowDeviation(s.qbar[t]),
			ChainDeviation: dev,
		})
	}

	return out, nil
}

// rowDeviation is max_i |Σ_j m[i,j] - 1|.
func rowDeviation(m *matrix.Dense) float64 {
	sums, _ := matrix.RowSums(m)
	var worst float64
	for _, v := range sums {
		worst = math.Max(worst, math.Abs(v-1))
	}

	return worst
}
