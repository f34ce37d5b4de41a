package schedule_test

import (
	"testing"

	"github.com/rostro36/evodiff/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBetasSohlDickstein pins 1/(T-t+1).
func TestBetasSohlDickstein(t *testing.T) {
	b, err := schedule.Betas(schedule.BetaSohlDickstein, 4)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 1.0 / 3, 0.5, 1}, b, 1e-15)
}

// TestBetasExpSumsToOne checks normalisation and monotonicity.
func TestBetasExpSumsToOne(t *testing.T) {
	b, err := schedule.Betas(schedule.BetaExp, 50)
	require.NoError(t, err)

	var sum float64
	for i, v := range b {
		sum += v
		if i > 0 {
			assert.Greater(t, v, b[i-1])
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

// TestBetasLinearEndpoints checks the default range.
func TestBetasLinearEndpoints(t *testing.T) {
	b, err := schedule.Betas(schedule.BetaLinear, 10)
	require.NoError(t, err)
	assert.InDelta(t, schedule.DefaultLinearStart, b[0], 1e-15)
	assert.InDelta(t, schedule.DefaultLinearEnd, b[9], 1e-15)
}

// TestBetasCosineClipped keeps every beta in (0, 0.999].
func TestBetasCosineClipped(t *testing.T) {
	b, err := schedule.Betas(schedule.BetaCosine, 100)
	require.NoError(t, err)
	for _, v := range b {
		assert.Greater(t, v, 0.0)
		assert.LessOrEqual(t, v, 0.999)
	}
	assert.Equal(t, 0.999, b[99])
}

// TestBetasErrors covers the failure modes.
func TestBetasErrors(t *testing.T) {
	_, err := schedule.Betas(schedule.BetaLinear, 0)
	require.ErrorIs(t, err, schedule.ErrNonPositiveSteps)

	_, err = schedule.Betas("quadratic", 10)
	require.ErrorIs(t, err, schedule.ErrUnknownBeta)

	_, err = schedule.ParseBetaKind("nope")
	require.ErrorIs(t, err, schedule.ErrUnknownBeta)

	_, err = schedule.ParseFamily("random")
	require.ErrorIs(t, err, schedule.ErrUnknownFamily)
}
