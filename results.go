package mlpe

import (
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/metrics"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/nnet"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/search"
)

// EvaluationResult is the per-split outcome for one model: the raw
// prediction/target arrays in original units and the metrics computed
// from them.
type EvaluationResult struct {
	Truth     []float64
	Predicted []float64
	Metrics   metrics.Set
}

// ModelResult bundles both splits for one estimator, plus the feature
// importance vector when the estimator offers one.
type ModelResult struct {
	Name        string
	Train       EvaluationResult
	Test        EvaluationResult
	Importances []float64
}

// NetworkSummary captures the trained network's history for plotting.
type NetworkSummary struct {
	Config    nnet.Config
	History   []nnet.Epoch
	BestEpoch int
	StopEpoch int
	Status    string
}

// RunResult is everything one run produced. It is handed as-is to the
// report and plot sinks; its numeric content is final before any sink
// runs, so sink failures cannot invalidate it.
type RunResult struct {
	DatasetID    string
	FeatureNames []string
	TargetName   string

	// The loaded table and the split that was evaluated.
	Table    *Table
	TrainIdx []int
	TestIdx  []int

	Models  []ModelResult
	Network NetworkSummary

	// Search is nil for direct-fit runs.
	Search *search.Result

	// SinkErrors collects report/plot failures. The run itself still
	// succeeded if this is non-empty.
	SinkErrors ErrorList
}

// Model returns the named model result, or nil.
func (r *RunResult) Model(name string) *ModelResult {
	for i := range r.Models {
		if r.Models[i].Name == name {
			return &r.Models[i]
		}
	}
	return nil
}
