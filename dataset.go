package mlpe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// Table is one loaded experimental dataset: a rectangular numeric feature
// matrix and the target column, in original units. A Table is treated as
// immutable once loaded; the runner works on copies.
type Table struct {
	Features     *mat.Dense
	Target       []float64
	FeatureNames []string
	TargetName   string
}

// Validate checks the structural invariants: non-empty, rectangular,
// name counts matching, and no non-finite values anywhere.
func (t *Table) Validate() error {
	if t.Features == nil {
		return errs.InvalidInput{Reason: "table: nil feature matrix"}
	}
	rows, cols := t.Features.Dims()
	if rows == 0 || cols == 0 {
		return errs.InvalidInput{Reason: "table: empty feature matrix"}
	}
	if len(t.Target) != rows {
		return errs.InvalidInput{Reason: fmt.Sprintf("table: %d rows but %d target values", rows, len(t.Target))}
	}
	if len(t.FeatureNames) != 0 && len(t.FeatureNames) != cols {
		return errs.InvalidInput{Reason: fmt.Sprintf("table: %d feature names for %d columns", len(t.FeatureNames), cols)}
	}
	for i := 0; i < rows; i++ {
		for j, v := range t.Features.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errs.InvalidInput{Reason: fmt.Sprintf("table: non-finite value at row %d col %d", i, j)}
			}
		}
		if math.IsNaN(t.Target[i]) || math.IsInf(t.Target[i], 0) {
			return errs.InvalidInput{Reason: fmt.Sprintf("table: non-finite target at row %d", i)}
		}
	}
	return nil
}

// A DataSource supplies one experimental table. Implementations live in
// the dataloader package; they are responsible for rejecting missing or
// non-numeric cells before the table reaches the runner.
type DataSource interface {
	Load() (*Table, error)
	ID() string
}

// A Regressor is any estimator the evaluation pipeline can drive. The
// network satisfies it; the tree-based models plug in as black boxes and
// get the identical metrics and report treatment.
type Regressor interface {
	Fit(x *mat.Dense, y []float64) error
	Predict(x *mat.Dense) ([]float64, error)
}

// A FeatureImportancer exposes a per-feature importance vector, as the
// random forest does. Optional; checked by type assertion.
type FeatureImportancer interface {
	FeatureImportances() []float64
}

// NamedRegressor pairs a black-box estimator with the name it is reported
// under.
type NamedRegressor struct {
	Name string
	Regressor
}

// A ReportSink persists the structured results of one run. File formats
// and sheet layouts are the sink's concern.
type ReportSink interface {
	Write(res *RunResult) error
}

// A PlotSink renders the training history and prediction comparisons of
// one run into image artifacts.
type PlotSink interface {
	Render(res *RunResult) error
}
