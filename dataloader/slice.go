package dataloader

import (
	"gonum.org/v1/gonum/mat"

	mlpe "github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// Slice is an in-memory data source, used by tests and for synthetic
// data. Rows hold the feature values; Target holds the matching scalars.
type Slice struct {
	Name         string
	Rows         [][]float64
	Target       []float64
	FeatureNames []string
	TargetName   string
}

func (s *Slice) ID() string {
	if s.Name == "" {
		return "slice"
	}
	return s.Name
}

func (s *Slice) Load() (*mlpe.Table, error) {
	if len(s.Rows) == 0 {
		return nil, errs.InvalidInput{Reason: "dataloader: slice source has no rows"}
	}
	cols := len(s.Rows[0])
	features := mat.NewDense(len(s.Rows), cols, nil)
	for i, row := range s.Rows {
		if len(row) != cols {
			return nil, errs.InvalidInput{Reason: "dataloader: slice source is ragged"}
		}
		features.SetRow(i, row)
	}
	t := &mlpe.Table{
		Features:     features,
		Target:       append([]float64(nil), s.Target...),
		FeatureNames: s.FeatureNames,
		TargetName:   s.TargetName,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
