package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

func TestComputePerfectPrediction(t *testing.T) {
	truth := []float64{1.5, -2, 0.25, 8, 3}
	pred := append([]float64(nil), truth...)

	m, err := Compute(truth, pred)
	require.NoError(t, err)

	assert.Equal(t, 1.0, m.R2)
	assert.Equal(t, 0.0, m.RMSE)
	assert.Equal(t, 0.0, m.MAE)
	assert.Equal(t, 0.0, m.MAPE)
}

func TestComputeKnownValues(t *testing.T) {
	truth := []float64{1, 2, 3, 4}
	pred := []float64{1.5, 2.5, 2.5, 3.5}

	m, err := Compute(truth, pred)
	require.NoError(t, err)

	// Every residual is 0.5 in magnitude.
	assert.InDelta(t, 0.5, m.RMSE, 1e-12)
	assert.InDelta(t, 0.5, m.MAE, 1e-12)
	// ssRes = 4*0.25 = 1, ssTot = 5.
	assert.InDelta(t, 1-1.0/5.0, m.R2, 1e-12)
}

func TestComputeLengthMismatch(t *testing.T) {
	_, err := Compute([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	var inv errs.InvalidInput
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Reason, "length mismatch")
}

func TestComputeNonFinite(t *testing.T) {
	cases := []struct {
		name  string
		truth []float64
		pred  []float64
	}{
		{"nan truth", []float64{math.NaN(), 1}, []float64{1, 1}},
		{"inf truth", []float64{math.Inf(1), 1}, []float64{1, 1}},
		{"nan pred", []float64{1, 1}, []float64{math.NaN(), 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Compute(c.truth, c.pred)
			var inv errs.InvalidInput
			require.ErrorAs(t, err, &inv)
			assert.Contains(t, inv.Reason, "non-finite")
		})
	}
}

func TestComputeEmpty(t *testing.T) {
	_, err := Compute(nil, nil)
	var inv errs.InvalidInput
	require.ErrorAs(t, err, &inv)
}

// A zero in the truth hits the MAPE denominator floor: the result is
// finite but enormous, which is the documented behavior near zero
// targets.
func TestMAPEZeroTargetFloor(t *testing.T) {
	m, err := Compute([]float64{0, 2}, []float64{1, 2})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(m.MAPE))
	assert.False(t, math.IsInf(m.MAPE, 0))
	assert.Greater(t, m.MAPE, 1e9)
}

func TestConstantTarget(t *testing.T) {
	m, err := Compute([]float64{2, 2, 2}, []float64{2, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.R2)

	m, err = Compute([]float64{2, 2, 2}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.R2)
}
