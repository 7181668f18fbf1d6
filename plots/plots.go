// Package plots renders the publication figures of one run: the training
// convergence curves with the early-stopping marker, and the predicted
// versus true scatter for each model and split.
package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	mlpe "github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr"
)

// Dir writes every figure of a run into one directory as PNG files.
type Dir struct {
	Dir string
}

func (d *Dir) Render(res *mlpe.RunResult) error {
	if err := os.MkdirAll(d.Dir, 0700); err != nil {
		return errors.Wrap(err, "creating plot directory")
	}
	if len(res.Network.History) > 0 {
		if err := d.convergence(res); err != nil {
			return err
		}
	}
	for i := range res.Models {
		m := &res.Models[i]
		if err := d.scatter(m.Name+"_train", res.TargetName, &m.Train); err != nil {
			return err
		}
		if err := d.scatter(m.Name+"_test", res.TargetName, &m.Test); err != nil {
			return err
		}
	}
	return nil
}

// convergence plots training and validation loss per epoch and marks the
// epoch the early-stopping snapshot was taken at.
func (d *Dir) convergence(res *mlpe.RunResult) error {
	hist := res.Network.History
	trainPts := make(plotter.XYs, len(hist))
	valPts := make(plotter.XYs, len(hist))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, e := range hist {
		trainPts[i].X = float64(e.Epoch)
		trainPts[i].Y = e.TrainLoss
		valPts[i].X = float64(e.Epoch)
		valPts[i].Y = e.ValLoss
		lo = math.Min(lo, math.Min(e.TrainLoss, e.ValLoss))
		hi = math.Max(hi, math.Max(e.TrainLoss, e.ValLoss))
	}

	plt := plot.New()
	plt.Title.Text = "Training convergence (" + res.Network.Status + ")"
	plt.X.Label.Text = "epoch"
	plt.Y.Label.Text = "MSE"

	trainLine, err := plotter.NewLine(trainPts)
	if err != nil {
		return errors.Wrap(err, "convergence plot")
	}
	valLine, err := plotter.NewLine(valPts)
	if err != nil {
		return errors.Wrap(err, "convergence plot")
	}
	valLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	stop := float64(res.Network.BestEpoch)
	marker, err := plotter.NewLine(plotter.XYs{{X: stop, Y: lo}, {X: stop, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "convergence plot")
	}
	marker.LineStyle.Dashes = []vg.Length{vg.Points(1), vg.Points(3)}

	plt.Add(trainLine, valLine, marker)
	plt.Legend.Add("train", trainLine)
	plt.Legend.Add("validation", valLine)
	plt.Legend.Add("best epoch", marker)
	plt.Legend.Top = true

	name := filepath.Join(d.Dir, "convergence.png")
	return errors.Wrap(plt.Save(6*vg.Inch, 4*vg.Inch, name), "saving "+name)
}

// scatter plots predictions against the truth with the y=x line a perfect
// model would sit on.
func (d *Dir) scatter(name, target string, ev *mlpe.EvaluationResult) error {
	pts := make(plotter.XYs, len(ev.Truth))
	for i := range ev.Truth {
		pts[i].X = ev.Truth[i]
		pts[i].Y = ev.Predicted[i]
	}

	plt := plot.New()
	plt.Title.Text = fmt.Sprintf("%s (R2=%.4f)", name, ev.Metrics.R2)
	plt.X.Label.Text = "true " + target
	plt.Y.Label.Text = "predicted " + target

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "scatter plot")
	}
	equalLine := plotter.NewFunction(func(x float64) float64 { return x })
	plt.Add(equalLine, sc)

	file := filepath.Join(d.Dir, name+"_pred_vs_truth.png")
	return errors.Wrap(plt.Save(5*vg.Inch, 5*vg.Inch, file), "saving "+file)
}
