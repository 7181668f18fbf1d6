// Package mlpe reproduces the cylinder pressure and wear-loss regression
// study: it loads one experimental table, holds out a test partition,
// scales features on training data only, trains the resilient-propagation
// network (directly or through a hyperparameter grid search), evaluates
// every model with the same metrics, and hands the structured results to
// the report and plot sinks.
package mlpe

import (
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/internal/split"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/metrics"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/nnet"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/scale"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/search"
)

// NetworkModelName is the name the trained network is reported under.
const NetworkModelName = "deep_mlp"

// Run executes one experiment.
//
// The run's numeric results are final before the sinks execute: a report
// or plot failure is logged, collected in RunResult.SinkErrors and does
// not make the run fail.
func Run(set *Settings) (*RunResult, error) {
	if err := set.validate(); err != nil {
		return nil, err
	}

	table, err := set.Source.Load()
	if err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	rows, cols := table.Features.Dims()
	logrus.WithFields(logrus.Fields{
		"dataset":  set.Source.ID(),
		"samples":  rows,
		"features": cols,
		"target":   table.TargetName,
	}).Info("dataset loaded")

	rng := rand.New(rand.NewSource(set.Seed))
	trainIdx, testIdx, err := split.Holdout(rows, set.TestFraction, rng)
	if err != nil {
		return nil, err
	}

	xTrain, yTrain := takeRows(table.Features, table.Target, trainIdx)
	xTest, yTest := takeRows(table.Features, table.Target, testIdx)

	inScaler := set.InputScaler
	if inScaler == nil {
		inScaler = &scale.None{}
	}
	outScaler := set.OutputScaler
	if outScaler == nil {
		outScaler = &scale.None{}
	}

	// Scaling parameters come from the training partition only; the
	// holdout is transformed with them, never refit.
	if err := inScaler.SetScale(xTrain); err != nil {
		return nil, err
	}
	if err := scale.FitVals(outScaler, yTrain); err != nil {
		return nil, err
	}
	xTrainS := mat.DenseCopyOf(xTrain)
	xTestS := mat.DenseCopyOf(xTest)
	if err := scale.ScaleData(inScaler, xTrainS); err != nil {
		return nil, err
	}
	if err := scale.ScaleData(inScaler, xTestS); err != nil {
		return nil, err
	}
	yTrainS := append([]float64(nil), yTrain...)
	if err := scale.ScaleVals(outScaler, yTrainS); err != nil {
		return nil, err
	}

	res := &RunResult{
		DatasetID:    set.Source.ID(),
		FeatureNames: table.FeatureNames,
		TargetName:   table.TargetName,
		Table:        table,
		TrainIdx:     trainIdx,
		TestIdx:      testIdx,
	}

	var network *nnet.Network
	if set.Search != nil {
		logrus.WithField("folds", set.Folds).Info("starting grid search")
		sres, err := search.Run(search.Options{
			Base:    set.Net,
			Space:   *set.Search,
			Folds:   set.Folds,
			Seed:    set.Seed,
			Workers: set.Workers,
		}, xTrainS, yTrainS)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"candidates": len(sres.Candidates),
			"best":       sres.Best.String(),
			"score":      sres.Scores[sres.BestIndex],
		}).Info("grid search finished")
		network = sres.Final
		res.Search = sres
	} else {
		cfg := set.Net
		cfg.Seed = set.Seed
		network, err = nnet.New(cfg)
		if err != nil {
			return nil, err
		}
		if err := network.Fit(xTrainS, yTrainS); err != nil {
			return nil, err
		}
	}
	logrus.WithFields(logrus.Fields{
		"status":     network.Status().String(),
		"stop_epoch": network.StopEpoch(),
		"best_epoch": network.BestEpoch(),
	}).Info("network training finished")

	res.Network = NetworkSummary{
		Config:    network.Config(),
		History:   network.History(),
		BestEpoch: network.BestEpoch(),
		StopEpoch: network.StopEpoch(),
		Status:    network.Status().String(),
	}

	netResult, err := evaluateModel(NetworkModelName, network, xTrainS, yTrain, xTestS, yTest, outScaler)
	if err != nil {
		return nil, err
	}
	res.Models = append(res.Models, netResult)

	// The black-box estimators see the same scaled features and scaled
	// targets, and are judged by the same metrics.
	for _, extra := range set.Extra {
		yCopy := append([]float64(nil), yTrainS...)
		if err := extra.Fit(mat.DenseCopyOf(xTrainS), yCopy); err != nil {
			return nil, err
		}
		mr, err := evaluateModel(extra.Name, extra, xTrainS, yTrain, xTestS, yTest, outScaler)
		if err != nil {
			return nil, err
		}
		if imp, ok := extra.Regressor.(FeatureImportancer); ok {
			mr.Importances = imp.FeatureImportances()
		}
		res.Models = append(res.Models, mr)
	}

	for _, m := range res.Models {
		logrus.WithFields(logrus.Fields{
			"model": m.Name,
			"train": m.Train.Metrics.String(),
			"test":  m.Test.Metrics.String(),
		}).Info("evaluation")
	}

	if set.Report != nil {
		if err := set.Report.Write(res); err != nil {
			logrus.WithError(err).Error("report sink failed; numeric results are unaffected")
			res.SinkErrors = append(res.SinkErrors, err)
		}
	}
	if set.Plots != nil {
		if err := set.Plots.Render(res); err != nil {
			logrus.WithError(err).Error("plot sink failed; numeric results are unaffected")
			res.SinkErrors = append(res.SinkErrors, err)
		}
	}
	return res, nil
}

// evaluateModel predicts both splits with a fitted estimator, brings the
// predictions back to original units, and computes the metrics against
// the untouched targets.
func evaluateModel(name string, reg Regressor, xTrainS *mat.Dense, yTrain []float64, xTestS *mat.Dense, yTest []float64, out scale.Scaler) (ModelResult, error) {
	train, err := evaluateSplit(reg, xTrainS, yTrain, out)
	if err != nil {
		return ModelResult{}, err
	}
	test, err := evaluateSplit(reg, xTestS, yTest, out)
	if err != nil {
		return ModelResult{}, err
	}
	return ModelResult{Name: name, Train: train, Test: test}, nil
}

func evaluateSplit(reg Regressor, xS *mat.Dense, truth []float64, out scale.Scaler) (EvaluationResult, error) {
	pred, err := reg.Predict(xS)
	if err != nil {
		return EvaluationResult{}, err
	}
	if err := scale.UnscaleVals(out, pred); err != nil {
		return EvaluationResult{}, err
	}
	m, err := metrics.Compute(truth, pred)
	if err != nil {
		return EvaluationResult{}, err
	}
	return EvaluationResult{
		Truth:     append([]float64(nil), truth...),
		Predicted: pred,
		Metrics:   m,
	}, nil
}

// takeRows copies the selected rows into a fresh matrix and target slice,
// leaving the source untouched.
func takeRows(x *mat.Dense, y []float64, idxs []int) (*mat.Dense, []float64) {
	_, cols := x.Dims()
	xs := mat.NewDense(len(idxs), cols, nil)
	ys := make([]float64, len(idxs))
	for i, idx := range idxs {
		xs.SetRow(i, x.RawRowView(idx))
		ys[i] = y[idx]
	}
	return xs, ys
}
