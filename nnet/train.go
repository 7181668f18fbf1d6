package nnet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/internal/split"
)

// Fit trains the network on the given features and targets. The incoming
// set is split internally into a training subset and a validation subset
// used for early stopping; the split, the initial weights and the dropout
// masks all derive from the configured seed. Fit may be called once per
// instance; call Reset to train again.
func (n *Network) Fit(x *mat.Dense, y []float64) error {
	if n.status != Uninitialized && n.status != Initialized {
		return errs.Configuration{Option: "nnet.Fit", Reason: "network already trained; Reset or build a fresh instance"}
	}
	if err := checkMatrix(x, 0); err != nil {
		return err
	}
	rows, cols := x.Dims()
	if len(y) != rows {
		return errs.InvalidInput{Reason: fmt.Sprintf("nnet: %d samples but %d targets", rows, len(y))}
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.InvalidInput{Reason: fmt.Sprintf("nnet: non-finite target at row %d", i)}
		}
	}
	if rows < 2 {
		return errs.InvalidInput{Reason: "nnet: need at least 2 samples for the internal validation split"}
	}

	if n.status == Uninitialized {
		n.initialize(cols)
	} else if n.inputDim != cols {
		return errs.InvalidInput{Reason: fmt.Sprintf("nnet: initialized for %d features, got %d", n.inputDim, cols)}
	}
	n.status = Training

	trainIdx, valIdx, err := split.Holdout(rows, n.cfg.ValidationFraction, n.rng)
	if err != nil {
		return err
	}
	xTrain, yTrain := subset(x, y, trainIdx)
	xVal, yVal := subset(x, y, valIdx)

	bestVal := math.Inf(1)
	var snapshot []*mat.Dense
	patience := 0
	n.history = n.history[:0]

	for epoch := 0; epoch < n.cfg.MaxEpochs; epoch++ {
		fp := n.forward(xTrain, true)
		trainLoss := mse(fp.output, yTrain)
		grads := n.backward(fp, yTrain)
		n.rpropUpdate(grads)

		valLoss := mse(n.forward(xVal, false).output, yVal)
		n.history = append(n.history, Epoch{Epoch: epoch, TrainLoss: trainLoss, ValLoss: valLoss})

		if bestVal-valLoss > n.cfg.MinImprovement {
			bestVal = valLoss
			n.bestEpoch = epoch
			snapshot = n.Weights()
			patience = 0
		} else {
			patience++
		}

		if n.cfg.LossTolerance > 0 && trainLoss <= n.cfg.LossTolerance {
			n.stopEpoch = epoch
			n.status = Converged
			return nil
		}
		if patience >= n.cfg.Patience {
			// Roll the weights back to the best validation snapshot.
			n.weights = snapshot
			n.stopEpoch = epoch
			n.status = EarlyStopped
			return nil
		}
	}

	// Epoch budget exhausted; the final weights stand as trained.
	n.stopEpoch = n.cfg.MaxEpochs - 1
	n.status = MaxIterReached
	return nil
}

// backward computes the batch gradient of the squared-error loss with
// respect to every weight matrix, strictly from the output layer down.
// The error at the linear output is (prediction - target); each layer's
// gradient is its input activation transposed times its error, averaged
// over the batch; the error handed to the layer below is gated by the
// tanh derivative at the stored pre-activation and by the dropout mask
// that was applied on the way up.
func (n *Network) backward(fp *forwardPass, y []float64) []*mat.Dense {
	nLayers := len(n.weights)
	batch, _ := fp.output.Dims()
	inv := 1 / float64(batch)

	errTerm := mat.NewDense(batch, 1, nil)
	for i := 0; i < batch; i++ {
		errTerm.Set(i, 0, fp.output.At(i, 0)-y[i])
	}

	grads := make([]*mat.Dense, nLayers)
	for k := nLayers - 1; k >= 0; k-- {
		fanIn, fanOut := n.weights[k].Dims()
		g := mat.NewDense(fanIn, fanOut, nil)
		g.Mul(fp.activations[k].T(), errTerm)
		g.Scale(inv, g)
		grads[k] = g

		if k == 0 {
			break
		}

		// Propagate the error to the layer below.
		back := mat.NewDense(batch, fanIn, nil)
		back.Mul(errTerm, n.weights[k].T())
		back.Apply(func(i, j int, v float64) float64 {
			t := math.Tanh(fp.preacts[k-1].At(i, j))
			return v * (1 - t*t)
		}, back)
		if fp.masks[k-1] != nil {
			back.MulElem(back, fp.masks[k-1])
		}
		errTerm = back
	}
	return grads
}

// rpropUpdate applies the resilient-propagation rule independently to
// every weight. The step magnitude is the per-weight adaptive delta; the
// gradient contributes only its sign, which keeps the update robust to
// vanishing or exploding gradient magnitudes across the tanh layers.
func (n *Network) rpropUpdate(grads []*mat.Dense) {
	for k := range n.weights {
		w := n.weights[k]
		d := n.deltas[k]
		pg := n.prevGrad[k]
		g := grads[k]
		rows, cols := w.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				grad := g.At(i, j)
				sign := grad * pg.At(i, j)
				delta := d.At(i, j)
				switch {
				case sign > 0:
					delta = math.Min(delta*n.cfg.EtaPlus, n.cfg.DeltaMax)
				case sign < 0:
					delta = math.Max(delta*n.cfg.EtaMinus, n.cfg.DeltaMin)
				}
				d.Set(i, j, delta)

				switch {
				case grad > 0:
					w.Set(i, j, w.At(i, j)-delta)
				case grad < 0:
					w.Set(i, j, w.At(i, j)+delta)
				}

				if sign < 0 {
					// Neutralize the next sign comparison after a reversal.
					pg.Set(i, j, 0)
				} else {
					pg.Set(i, j, grad)
				}
			}
		}
	}
}

// mse is the mean squared error between a batch-by-1 prediction column
// and the targets.
func mse(pred *mat.Dense, y []float64) float64 {
	var sum float64
	for i := range y {
		d := pred.At(i, 0) - y[i]
		sum += d * d
	}
	return sum / float64(len(y))
}

// subset copies the selected rows of x and entries of y.
func subset(x *mat.Dense, y []float64, idxs []int) (*mat.Dense, []float64) {
	_, cols := x.Dims()
	xs := mat.NewDense(len(idxs), cols, nil)
	ys := make([]float64, len(idxs))
	for i, idx := range idxs {
		xs.SetRow(i, x.RawRowView(idx))
		ys[i] = y[idx]
	}
	return xs, ys
}
