// Package nnet implements the feed-forward tanh regression network trained
// with resilient propagation and early stopping. Gradients are derived
// analytically for the fixed topology; there is no general autodiff.
package nnet

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// Status tracks the training state machine. Only one transition into
// Training is permitted per instance; retraining requires Reset or a
// fresh network.
type Status int

const (
	Uninitialized Status = iota
	Initialized
	Training
	Converged
	EarlyStopped
	MaxIterReached
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Training:
		return "training"
	case Converged:
		return "converged"
	case EarlyStopped:
		return "early stopped"
	case MaxIterReached:
		return "max iterations reached"
	}
	return fmt.Sprintf("unknown status %d", int(s))
}

// Terminal reports whether training has finished in this state.
func (s Status) Terminal() bool {
	return s == Converged || s == EarlyStopped || s == MaxIterReached
}

// Epoch is one record of the training history.
type Epoch struct {
	Epoch     int
	TrainLoss float64
	ValLoss   float64
}

// Network is a feed-forward regressor with equal-width tanh hidden layers
// and a single linear output. One instance owns its weight matrices and
// resilient-propagation state exclusively; it must not be shared across
// concurrent training runs.
type Network struct {
	cfg      Config
	inputDim int

	// weights[k] maps layer k's input to its output, laid out fanIn by
	// fanOut. deltas and prevGrad mirror the weight shapes.
	weights  []*mat.Dense
	deltas   []*mat.Dense
	prevGrad []*mat.Dense

	status    Status
	history   []Epoch
	bestEpoch int
	stopEpoch int

	rng *rand.Rand
}

// New validates the configuration and returns an uninitialized network.
func New(cfg Config) (*Network, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Network{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Config returns the configuration the network was built with.
func (n *Network) Config() Config { return n.cfg }

// Status returns the current training state.
func (n *Network) Status() Status { return n.status }

// History returns a copy of the per-epoch loss records accumulated during
// the last training run.
func (n *Network) History() []Epoch {
	return append([]Epoch(nil), n.history...)
}

// BestEpoch returns the epoch index with the best validation loss seen
// during training.
func (n *Network) BestEpoch() int { return n.bestEpoch }

// StopEpoch returns the epoch at which training terminated.
func (n *Network) StopEpoch() int { return n.stopEpoch }

// InputDim returns the feature count the network was initialized with, or
// 0 before initialization.
func (n *Network) InputDim() int { return n.inputDim }

// Reset returns the network to the uninitialized state with a fresh
// random stream, allowing another Fit.
func (n *Network) Reset() {
	n.weights = nil
	n.deltas = nil
	n.prevGrad = nil
	n.history = nil
	n.bestEpoch = 0
	n.stopEpoch = 0
	n.inputDim = 0
	n.status = Uninitialized
	n.rng = rand.New(rand.NewSource(n.cfg.Seed))
}

// initialize draws the weight matrices and resets the resilient-
// propagation state. Weights come from a zero-mean Gaussian scaled by
// sqrt(2/fanIn), the variance-scaling rule for tanh units.
func (n *Network) initialize(inputDim int) {
	sizes := n.layerSizes(inputDim)
	n.inputDim = inputDim
	n.weights = make([]*mat.Dense, len(sizes)-1)
	n.deltas = make([]*mat.Dense, len(sizes)-1)
	n.prevGrad = make([]*mat.Dense, len(sizes)-1)
	for k := 0; k < len(sizes)-1; k++ {
		fanIn, fanOut := sizes[k], sizes[k+1]
		w := mat.NewDense(fanIn, fanOut, nil)
		sd := math.Sqrt(2 / float64(fanIn))
		for i := 0; i < fanIn; i++ {
			for j := 0; j < fanOut; j++ {
				w.Set(i, j, n.rng.NormFloat64()*sd)
			}
		}
		n.weights[k] = w

		d := mat.NewDense(fanIn, fanOut, nil)
		for i := 0; i < fanIn; i++ {
			for j := 0; j < fanOut; j++ {
				d.Set(i, j, n.cfg.DeltaInit)
			}
		}
		n.deltas[k] = d
		n.prevGrad[k] = mat.NewDense(fanIn, fanOut, nil)
	}
	n.status = Initialized
}

// layerSizes returns the unit count of every layer, input first.
func (n *Network) layerSizes(inputDim int) []int {
	sizes := make([]int, 0, n.cfg.HiddenLayers+2)
	sizes = append(sizes, inputDim)
	for i := 0; i < n.cfg.HiddenLayers; i++ {
		sizes = append(sizes, n.cfg.HiddenSize)
	}
	return append(sizes, 1)
}

// Weights returns deep copies of the weight matrices, input boundary
// first. Exposed for determinism checks and analysis.
func (n *Network) Weights() []*mat.Dense {
	out := make([]*mat.Dense, len(n.weights))
	for i, w := range n.weights {
		out[i] = mat.DenseCopyOf(w)
	}
	return out
}

// forwardPass holds the intermediates one batch forward pass retains for
// the backward pass: the input, every pre-activation, every (masked)
// activation and the dropout masks.
type forwardPass struct {
	activations []*mat.Dense // activations[0] is the batch input
	preacts     []*mat.Dense // pre-activations per weight boundary
	masks       []*mat.Dense // inverted-dropout masks per hidden layer, nil at inference
	output      *mat.Dense   // batch-by-1 linear output
}

// forward runs the batch through the network. In training mode the hidden
// activations are hit with inverted dropout: surviving units are scaled
// by 1/(1-rate) so the expected activation is unchanged, and the masks
// are retained so the backward pass gates gradients identically.
func (n *Network) forward(x *mat.Dense, training bool) *forwardPass {
	nLayers := len(n.weights)
	fp := &forwardPass{
		activations: make([]*mat.Dense, nLayers+1),
		preacts:     make([]*mat.Dense, nLayers),
		masks:       make([]*mat.Dense, nLayers),
	}
	fp.activations[0] = x

	cur := x
	for k := 0; k < nLayers; k++ {
		rows, _ := cur.Dims()
		_, cols := n.weights[k].Dims()
		z := mat.NewDense(rows, cols, nil)
		z.Mul(cur, n.weights[k])
		fp.preacts[k] = z

		if k == nLayers-1 {
			// Linear output unit: no activation, no dropout.
			fp.output = z
			fp.activations[k+1] = z
			break
		}

		a := mat.NewDense(rows, cols, nil)
		a.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, z)

		if training && n.cfg.Dropout > 0 {
			keep := 1 - n.cfg.Dropout
			m := mat.NewDense(rows, cols, nil)
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					if n.rng.Float64() < keep {
						m.Set(i, j, 1/keep)
					}
				}
			}
			fp.masks[k] = m
			a.MulElem(a, m)
		}

		fp.activations[k+1] = a
		cur = a
	}
	return fp
}

// Predict returns predictions for each row of x. It is only valid after
// training has reached a terminal state.
func (n *Network) Predict(x *mat.Dense) ([]float64, error) {
	if !n.status.Terminal() {
		return nil, errs.UntrainedModel{Op: "nnet.Predict"}
	}
	if err := checkMatrix(x, n.inputDim); err != nil {
		return nil, err
	}
	fp := n.forward(x, false)
	rows, _ := x.Dims()
	out := make([]float64, rows)
	for i := range out {
		out[i] = fp.output.At(i, 0)
	}
	return out, nil
}

// PredictOne returns the prediction for a single feature vector.
func (n *Network) PredictOne(point []float64) (float64, error) {
	out, err := n.Predict(mat.NewDense(1, len(point), append([]float64(nil), point...)))
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// checkMatrix validates shape and finiteness of a feature matrix.
func checkMatrix(x *mat.Dense, wantCols int) error {
	r, c := x.Dims()
	if r == 0 {
		return errs.InvalidInput{Reason: "nnet: empty feature matrix"}
	}
	if wantCols > 0 && c != wantCols {
		return errs.InvalidInput{Reason: fmt.Sprintf("nnet: feature matrix has %d columns, network expects %d", c, wantCols)}
	}
	for i := 0; i < r; i++ {
		row := x.RawRowView(i)
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errs.InvalidInput{Reason: fmt.Sprintf("nnet: non-finite feature at row %d col %d", i, j)}
			}
		}
	}
	return nil
}
