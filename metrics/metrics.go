// Package metrics computes the regression accuracy measures reported in
// the study: R², RMSE, MAE and MAPE.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// mapeFloor bounds the MAPE denominator away from zero. This is an
// approximation: near zero-valued targets MAPE is not a true percentage
// error and should be read with care.
const mapeFloor = 1e-10

// Set is one bundle of accuracy measures for a (truth, prediction) pair.
type Set struct {
	R2   float64
	RMSE float64
	MAE  float64
	MAPE float64
}

func (s Set) String() string {
	return fmt.Sprintf("R2=%.6f RMSE=%.6f MAE=%.6f MAPE=%.4f%%", s.R2, s.RMSE, s.MAE, s.MAPE)
}

// Compute returns the metric set for equal-length finite sequences of
// ground truth and predictions. It has no state and is safe for
// concurrent use.
func Compute(truth, pred []float64) (Set, error) {
	if len(truth) != len(pred) {
		return Set{}, errs.InvalidInput{Reason: fmt.Sprintf("metrics: length mismatch: %d truth vs %d predicted", len(truth), len(pred))}
	}
	if len(truth) == 0 {
		return Set{}, errs.InvalidInput{Reason: "metrics: empty sequences"}
	}
	for i := range truth {
		if !isFinite(truth[i]) {
			return Set{}, errs.InvalidInput{Reason: fmt.Sprintf("metrics: non-finite truth value at index %d", i)}
		}
		if !isFinite(pred[i]) {
			return Set{}, errs.InvalidInput{Reason: fmt.Sprintf("metrics: non-finite predicted value at index %d", i)}
		}
	}

	n := float64(len(truth))
	mean := stat.Mean(truth, nil)

	var ssRes, ssTot, sumAbs, sumPct float64
	for i := range truth {
		d := truth[i] - pred[i]
		ssRes += d * d
		m := truth[i] - mean
		ssTot += m * m
		sumAbs += math.Abs(d)
		sumPct += math.Abs(d) / math.Max(math.Abs(truth[i]), mapeFloor)
	}

	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	} else if ssRes > 0 {
		// Constant target but imperfect predictions.
		r2 = 0
	}

	return Set{
		R2:   r2,
		RMSE: math.Sqrt(ssRes / n),
		MAE:  sumAbs / n,
		MAPE: 100 * sumPct / n,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
