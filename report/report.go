// Package report persists the results of one run as an xlsx workbook
// with one sheet per view: per-sample predictions for each split, the
// original dataset, the metric summary, and, when a grid search ran,
// the cross-validation table and feature importances.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	mlpe "github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr"
)

// Sheet names in the output workbook.
const (
	SheetTrain       = "Training Results"
	SheetTest        = "Test Results"
	SheetCombined    = "Combined Results"
	SheetDataset     = "Original Dataset"
	SheetMetrics     = "Performance Metrics"
	SheetCrossVal    = "Cross Validation"
	SheetImportances = "Feature Importance"
)

// Workbook writes one xlsx file per run.
type Workbook struct {
	Path string
}

func (w *Workbook) Write(res *mlpe.RunResult) error {
	if err := os.MkdirAll(filepath.Dir(w.Path), 0700); err != nil {
		return errors.Wrap(err, "creating report directory")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSplit(f, SheetTrain, res, res.TrainIdx, func(m *mlpe.ModelResult) *mlpe.EvaluationResult { return &m.Train }); err != nil {
		return err
	}
	if err := writeSplit(f, SheetTest, res, res.TestIdx, func(m *mlpe.ModelResult) *mlpe.EvaluationResult { return &m.Test }); err != nil {
		return err
	}
	if err := writeCombined(f, res); err != nil {
		return err
	}
	if err := writeDataset(f, res); err != nil {
		return err
	}
	if err := writeMetrics(f, res); err != nil {
		return err
	}
	if res.Search != nil {
		if err := writeCrossVal(f, res); err != nil {
			return err
		}
	}
	if hasImportances(res) {
		if err := writeImportances(f, res); err != nil {
			return err
		}
	}

	// The workbook starts with a default sheet; drop it so the report
	// opens on the training results.
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(w.Path); err != nil {
		return errors.Wrapf(err, "saving workbook %s", w.Path)
	}
	return nil
}

func writeSplit(f *excelize.File, sheet string, res *mlpe.RunResult, idxs []int, pick func(*mlpe.ModelResult) *mlpe.EvaluationResult) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, sheet)
	}
	header := []interface{}{"Sample", "Actual " + res.TargetName}
	for i := range res.Models {
		header = append(header, res.Models[i].Name+" Predicted", res.Models[i].Name+" Error")
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, idx := range idxs {
		row := []interface{}{idx + 1}
		var truth float64
		for mi := range res.Models {
			ev := pick(&res.Models[mi])
			truth = ev.Truth[i]
			if mi == 0 {
				row = append(row, truth)
			}
			row = append(row, ev.Predicted[i], ev.Predicted[i]-truth)
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCombined(f *excelize.File, res *mlpe.RunResult) error {
	if _, err := f.NewSheet(SheetCombined); err != nil {
		return errors.Wrap(err, SheetCombined)
	}
	header := []interface{}{"Sample", "Split", "Actual " + res.TargetName}
	for i := range res.Models {
		header = append(header, res.Models[i].Name+" Predicted")
	}
	if err := setRow(f, SheetCombined, 1, header); err != nil {
		return err
	}
	rowNum := 2
	emit := func(split string, idxs []int, pick func(*mlpe.ModelResult) *mlpe.EvaluationResult) error {
		for i, idx := range idxs {
			row := []interface{}{idx + 1, split, pick(&res.Models[0]).Truth[i]}
			for mi := range res.Models {
				row = append(row, pick(&res.Models[mi]).Predicted[i])
			}
			if err := setRow(f, SheetCombined, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
		return nil
	}
	if err := emit("train", res.TrainIdx, func(m *mlpe.ModelResult) *mlpe.EvaluationResult { return &m.Train }); err != nil {
		return err
	}
	return emit("test", res.TestIdx, func(m *mlpe.ModelResult) *mlpe.EvaluationResult { return &m.Test })
}

func writeDataset(f *excelize.File, res *mlpe.RunResult) error {
	if _, err := f.NewSheet(SheetDataset); err != nil {
		return errors.Wrap(err, SheetDataset)
	}
	header := make([]interface{}, 0, len(res.FeatureNames)+1)
	for _, n := range res.FeatureNames {
		header = append(header, n)
	}
	header = append(header, res.TargetName)
	if err := setRow(f, SheetDataset, 1, header); err != nil {
		return err
	}
	rows, cols := res.Table.Features.Dims()
	for i := 0; i < rows; i++ {
		row := make([]interface{}, 0, cols+1)
		for j := 0; j < cols; j++ {
			row = append(row, res.Table.Features.At(i, j))
		}
		row = append(row, res.Table.Target[i])
		if err := setRow(f, SheetDataset, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeMetrics(f *excelize.File, res *mlpe.RunResult) error {
	if _, err := f.NewSheet(SheetMetrics); err != nil {
		return errors.Wrap(err, SheetMetrics)
	}
	if err := setRow(f, SheetMetrics, 1, []interface{}{"Model", "Split", "R2", "RMSE", "MAE", "MAPE (%)"}); err != nil {
		return err
	}
	rowNum := 2
	for _, m := range res.Models {
		for _, sp := range []struct {
			name string
			ev   mlpe.EvaluationResult
		}{{"train", m.Train}, {"test", m.Test}} {
			row := []interface{}{m.Name, sp.name, sp.ev.Metrics.R2, sp.ev.Metrics.RMSE, sp.ev.Metrics.MAE, sp.ev.Metrics.MAPE}
			if err := setRow(f, SheetMetrics, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func writeCrossVal(f *excelize.File, res *mlpe.RunResult) error {
	if _, err := f.NewSheet(SheetCrossVal); err != nil {
		return errors.Wrap(err, SheetCrossVal)
	}
	s := res.Search
	header := []interface{}{"Candidate", "Hidden Layers", "Hidden Size", "Dropout", "Eta+", "Eta-", "Mean Score", "Best"}
	if len(s.FoldLosses) > 0 {
		for i := range s.FoldLosses[0] {
			header = append(header, fmt.Sprintf("Fold %d MSE", i+1))
		}
	}
	if err := setRow(f, SheetCrossVal, 1, header); err != nil {
		return err
	}
	for ci, cand := range s.Candidates {
		best := ""
		if ci == s.BestIndex {
			best = "yes"
		}
		row := []interface{}{ci + 1, cand.HiddenLayers, cand.HiddenSize, cand.Dropout, cand.EtaPlus, cand.EtaMinus, s.Scores[ci], best}
		for _, l := range s.FoldLosses[ci] {
			row = append(row, l)
		}
		if err := setRow(f, SheetCrossVal, ci+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeImportances(f *excelize.File, res *mlpe.RunResult) error {
	if _, err := f.NewSheet(SheetImportances); err != nil {
		return errors.Wrap(err, SheetImportances)
	}
	header := []interface{}{"Feature"}
	var models []*mlpe.ModelResult
	for i := range res.Models {
		if len(res.Models[i].Importances) > 0 {
			models = append(models, &res.Models[i])
			header = append(header, res.Models[i].Name)
		}
	}
	if err := setRow(f, SheetImportances, 1, header); err != nil {
		return err
	}
	for j, name := range res.FeatureNames {
		row := []interface{}{name}
		for _, m := range models {
			row = append(row, m.Importances[j])
		}
		if err := setRow(f, SheetImportances, j+2, row); err != nil {
			return err
		}
	}
	return nil
}

func hasImportances(res *mlpe.RunResult) bool {
	for i := range res.Models {
		if len(res.Models[i].Importances) > 0 {
			return true
		}
	}
	return false
}

func setRow(f *excelize.File, sheet string, row int, vals []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, sheet)
	}
	return errors.Wrap(f.SetSheetRow(sheet, cell, &vals), sheet)
}
