// Package settings is a registry of named training configurations and
// search spaces, to aid in creating reproducible results: a run is fully
// described by the dataset, the seed and a couple of preset names.
package settings

import (
	"fmt"
	"sort"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/nnet"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/search"
)

// Missing is returned when a preset name is not registered. It lists the
// acceptable options.
type Missing struct {
	Prefix  string
	Options []string
}

func (m Missing) Error() string {
	return fmt.Sprintf("%s: acceptable options: %v", m.Prefix, m.Options)
}

// Training preset names.
const (
	QuickTraining    = "quick"
	StandardTraining = "standard"
	ThoroughTraining = "thorough"
)

// Search space preset names.
const (
	SmallSpace = "small"
	PaperSpace = "paper"
)

var (
	sortedTraining = []string{QuickTraining, StandardTraining, ThoroughTraining}
	sortedSpaces   = []string{SmallSpace, PaperSpace}
)

func init() {
	sort.Strings(sortedTraining)
	sort.Strings(sortedSpaces)
}

// Training returns the network configuration registered under the given
// name. The seed is left zero; the runner stamps the run seed on it.
func Training(name string) (nnet.Config, error) {
	cfg := nnet.DefaultConfig()
	switch name {
	case QuickTraining:
		cfg.MaxEpochs = 200
		cfg.Patience = 20
	case StandardTraining:
		cfg.MaxEpochs = 1000
		cfg.Patience = 50
	case ThoroughTraining:
		cfg.MaxEpochs = 5000
		cfg.Patience = 200
		cfg.MinImprovement = 1e-8
	default:
		return nnet.Config{}, Missing{
			Prefix:  "training setting not found",
			Options: sortedTraining,
		}
	}
	return cfg, nil
}

// Space returns the search space registered under the given name.
func Space(name string) (search.Space, error) {
	switch name {
	case SmallSpace:
		return search.Space{
			HiddenLayers: []int{1, 2},
			HiddenSize:   []int{10, 20},
			Dropout:      []float64{0},
			EtaPlus:      []float64{1.2},
			EtaMinus:     []float64{0.5},
		}, nil
	case PaperSpace:
		return search.Space{
			HiddenLayers: []int{1, 2, 3},
			HiddenSize:   []int{10, 20, 50},
			Dropout:      []float64{0, 0.1, 0.2},
			EtaPlus:      []float64{1.2},
			EtaMinus:     []float64{0.5},
		}, nil
	}
	return search.Space{}, Missing{
		Prefix:  "search space not found",
		Options: sortedSpaces,
	}
}
