package nnet

import (
	"fmt"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// Config collects every tunable of the resilient-propagation network.
// The zero value is not usable; construct through DefaultConfig and
// override fields, or through the settings presets.
type Config struct {
	// Topology.
	HiddenLayers int // number of equal-width tanh hidden layers
	HiddenSize   int // units per hidden layer

	// Inverted-dropout rate applied to hidden activations during
	// training. Zero disables dropout.
	Dropout float64

	// Resilient-propagation step-size control.
	EtaPlus   float64 // growth factor on agreeing gradient signs
	EtaMinus  float64 // shrink factor on a sign reversal
	DeltaInit float64 // initial per-weight step size
	DeltaMin  float64
	DeltaMax  float64

	// Training loop.
	MaxEpochs          int
	Patience           int     // epochs without sufficient improvement before stopping
	MinImprovement     float64 // validation loss must improve by more than this to reset patience
	ValidationFraction float64 // share of the fit data held out internally
	LossTolerance      float64 // training loss at or below this counts as converged; zero disables

	// Seed drives weight initialization, the internal validation split
	// and the dropout masks. Identical seed and data reproduce the run.
	Seed int64
}

// DefaultConfig returns the training configuration used for the paper
// runs unless a preset overrides it.
func DefaultConfig() Config {
	return Config{
		HiddenLayers:       2,
		HiddenSize:         20,
		Dropout:            0,
		EtaPlus:            1.2,
		EtaMinus:           0.5,
		DeltaInit:          0.1,
		DeltaMin:           1e-6,
		DeltaMax:           50,
		MaxEpochs:          1000,
		Patience:           50,
		MinImprovement:     1e-6,
		ValidationFraction: 0.2,
	}
}

func (c Config) validate() error {
	switch {
	case c.HiddenLayers < 1:
		return confErr("HiddenLayers", "must be at least 1, got %d", c.HiddenLayers)
	case c.HiddenSize < 1:
		return confErr("HiddenSize", "must be at least 1, got %d", c.HiddenSize)
	case c.Dropout < 0 || c.Dropout >= 1:
		return confErr("Dropout", "must be in [0,1), got %v", c.Dropout)
	case c.EtaPlus <= 1:
		return confErr("EtaPlus", "must exceed 1, got %v", c.EtaPlus)
	case c.EtaMinus <= 0 || c.EtaMinus >= 1:
		return confErr("EtaMinus", "must be in (0,1), got %v", c.EtaMinus)
	case c.DeltaInit <= 0:
		return confErr("DeltaInit", "must be positive, got %v", c.DeltaInit)
	case c.DeltaMin <= 0 || c.DeltaMin > c.DeltaInit:
		return confErr("DeltaMin", "must be in (0, DeltaInit], got %v", c.DeltaMin)
	case c.DeltaMax < c.DeltaInit:
		return confErr("DeltaMax", "must be at least DeltaInit, got %v", c.DeltaMax)
	case c.MaxEpochs < 1:
		return confErr("MaxEpochs", "must be at least 1, got %d", c.MaxEpochs)
	case c.Patience < 1:
		return confErr("Patience", "must be at least 1, got %d", c.Patience)
	case c.MinImprovement < 0:
		return confErr("MinImprovement", "must be non-negative, got %v", c.MinImprovement)
	case c.ValidationFraction <= 0 || c.ValidationFraction >= 1:
		return confErr("ValidationFraction", "must be in (0,1), got %v", c.ValidationFraction)
	case c.LossTolerance < 0:
		return confErr("LossTolerance", "must be non-negative, got %v", c.LossTolerance)
	}
	return nil
}

func confErr(option, format string, args ...interface{}) error {
	return errs.Configuration{Option: "nnet." + option, Reason: fmt.Sprintf(format, args...)}
}
