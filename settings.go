package mlpe

import (
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/nnet"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/scale"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/search"
)

// Settings configures one end-to-end run for one dataset/target pair.
// There is no process-wide state: every run owns its configuration and
// its seed.
type Settings struct {
	Source DataSource

	// Scalers are fit on the training partition only and applied
	// identically to the holdout. Nil means no scaling.
	InputScaler  scale.Scaler
	OutputScaler scale.Scaler

	// TestFraction of rows is held out for final evaluation, selected
	// deterministically from Seed.
	TestFraction float64
	Seed         int64

	// Net configures the network for a direct fit. When Search is set
	// the run grid-searches instead, using Net as the base every
	// candidate overlays.
	Net    nnet.Config
	Search *search.Space
	Folds  int
	// Workers bounds parallel candidate evaluation; 0 means GOMAXPROCS.
	Workers int

	// Extra black-box estimators (decision tree, random forest) run
	// through the identical evaluate/report pipeline.
	Extra []NamedRegressor

	// Sinks may be nil. Their failures are logged and collected in
	// RunResult.SinkErrors, never fatal.
	Report ReportSink
	Plots  PlotSink
}

func (s *Settings) validate() error {
	if s.Source == nil {
		return errs.Configuration{Option: "Source", Reason: "no data source provided"}
	}
	if s.TestFraction <= 0 || s.TestFraction >= 1 {
		return errs.Configuration{Option: "TestFraction", Reason: "must be in (0,1)"}
	}
	if s.Search != nil && s.Folds < 2 {
		return errs.Configuration{Option: "Folds", Reason: "grid search requires at least 2 folds"}
	}
	return nil
}
