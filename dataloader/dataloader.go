// Package dataloader turns spreadsheet and CSV files of experimental
// measurements into validated numeric tables. Loaders reject empty,
// ragged, non-numeric or incomplete data before anything reaches the
// training pipeline.
package dataloader

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	mlpe "github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// buildTable converts headed string records into a Table. The target
// column is selected by heading; an empty target name picks the last
// column. Every cell must parse as a finite number.
func buildTable(headings []string, records [][]string, target string) (*mlpe.Table, error) {
	if len(headings) == 0 {
		return nil, errs.InvalidInput{Reason: "dataloader: no header row"}
	}
	if len(records) == 0 {
		return nil, errs.InvalidInput{Reason: "dataloader: no data rows"}
	}

	targetCol := len(headings) - 1
	if target != "" {
		targetCol = -1
		for j, h := range headings {
			if strings.EqualFold(strings.TrimSpace(h), target) {
				targetCol = j
				break
			}
		}
		if targetCol == -1 {
			return nil, errs.Configuration{Option: "target", Reason: fmt.Sprintf("column %q not found in header %v", target, headings)}
		}
	}
	if len(headings) < 2 {
		return nil, errs.InvalidInput{Reason: "dataloader: need at least one feature column and one target column"}
	}

	nRows := len(records)
	nFeat := len(headings) - 1
	features := mat.NewDense(nRows, nFeat, nil)
	targetVals := make([]float64, nRows)
	names := make([]string, 0, nFeat)
	for j, h := range headings {
		if j != targetCol {
			names = append(names, strings.TrimSpace(h))
		}
	}

	for i, rec := range records {
		if len(rec) != len(headings) {
			return nil, errs.InvalidInput{Reason: fmt.Sprintf("dataloader: row %d has %d cells, header has %d", i+1, len(rec), len(headings))}
		}
		fj := 0
		for j, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errs.InvalidInput{Reason: fmt.Sprintf("dataloader: row %d column %q: non-numeric value %q", i+1, headings[j], cell)}
			}
			if j == targetCol {
				targetVals[i] = v
				continue
			}
			features.Set(i, fj, v)
			fj++
		}
	}

	t := &mlpe.Table{
		Features:     features,
		Target:       targetVals,
		FeatureNames: names,
		TargetName:   strings.TrimSpace(headings[targetCol]),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
