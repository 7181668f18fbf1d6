// Package search exhaustively evaluates network configurations over the
// cartesian product of candidate option lists, scoring each by k-fold
// cross-validation and refitting the winner on the full input.
package search

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/internal/split"
	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/nnet"
)

// Space lists the candidate values for every searched option. Every list
// must be non-empty; options that should not vary get a single value.
type Space struct {
	HiddenLayers []int
	HiddenSize   []int
	Dropout      []float64
	EtaPlus      []float64
	EtaMinus     []float64
}

// dim is one enumeration axis. Values are held as float64 so the odometer
// below stays uniform; integer options are converted back in apply.
type dim struct {
	name   string
	values []float64
}

func (s Space) dims() ([]dim, error) {
	ds := []dim{
		{"HiddenLayers", ints(s.HiddenLayers)},
		{"HiddenSize", ints(s.HiddenSize)},
		{"Dropout", s.Dropout},
		{"EtaPlus", s.EtaPlus},
		{"EtaMinus", s.EtaMinus},
	}
	for _, d := range ds {
		if len(d.values) == 0 {
			return nil, errs.Configuration{Option: "search." + d.name, Reason: "empty candidate list"}
		}
	}
	return ds, nil
}

func ints(vs []int) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

// Candidate is one concrete assignment of the searched options.
type Candidate struct {
	HiddenLayers int
	HiddenSize   int
	Dropout      float64
	EtaPlus      float64
	EtaMinus     float64
}

func (c Candidate) String() string {
	return fmt.Sprintf("layers=%d width=%d dropout=%g eta+=%g eta-=%g",
		c.HiddenLayers, c.HiddenSize, c.Dropout, c.EtaPlus, c.EtaMinus)
}

// apply overlays the candidate onto a base configuration.
func (c Candidate) apply(base nnet.Config) nnet.Config {
	base.HiddenLayers = c.HiddenLayers
	base.HiddenSize = c.HiddenSize
	base.Dropout = c.Dropout
	base.EtaPlus = c.EtaPlus
	base.EtaMinus = c.EtaMinus
	return base
}

// enumerate walks the cartesian product of the option lists with an
// odometer, last dimension fastest. The ordering is what tie-breaking is
// defined against: of equal-scoring candidates the earlier one wins.
func enumerate(ds []dim) []Candidate {
	total := 1
	for _, d := range ds {
		total *= len(d.values)
	}
	idx := make([]int, len(ds))
	cands := make([]Candidate, 0, total)
	for {
		cands = append(cands, Candidate{
			HiddenLayers: int(ds[0].values[idx[0]]),
			HiddenSize:   int(ds[1].values[idx[1]]),
			Dropout:      ds[2].values[idx[2]],
			EtaPlus:      ds[3].values[idx[3]],
			EtaMinus:     ds[4].values[idx[4]],
		})
		k := len(ds) - 1
		for k >= 0 {
			idx[k]++
			if idx[k] < len(ds[k].values) {
				break
			}
			idx[k] = 0
			k--
		}
		if k < 0 {
			return cands
		}
	}
}

// Options configures one search run.
type Options struct {
	Base    nnet.Config // settings shared by every candidate
	Space   Space
	Folds   int
	Seed    int64
	Workers int // concurrent candidate evaluations; 0 means GOMAXPROCS
}

// Result reports every candidate with its mean cross-validation score and
// the final model refit on the complete input with the winning candidate.
type Result struct {
	Candidates []Candidate
	Scores     []float64   // mean negative validation MSE, by candidate
	FoldLosses [][]float64 // per-fold validation MSE, by candidate
	BestIndex  int
	Best       Candidate
	BestConfig nnet.Config
	Final      *nnet.Network
}

// Run evaluates the full cross-product of the search space. Fold
// assignment is drawn once from the seed and shared by all candidates, so
// scores are comparable and the whole search is reproducible. Candidates
// are independent and evaluated on a bounded worker pool.
func Run(opt Options, x *mat.Dense, y []float64) (*Result, error) {
	ds, err := opt.Space.dims()
	if err != nil {
		return nil, err
	}
	rows, _ := x.Dims()
	if rows != len(y) {
		return nil, errs.InvalidInput{Reason: fmt.Sprintf("search: %d samples but %d targets", rows, len(y))}
	}

	all := make([]int, rows)
	for i := range all {
		all[i] = i
	}
	folds, err := split.KFold(all, opt.Folds, rand.New(rand.NewSource(opt.Seed)))
	if err != nil {
		return nil, err
	}

	cands := enumerate(ds)
	res := &Result{
		Candidates: cands,
		Scores:     make([]float64, len(cands)),
		FoldLosses: make([][]float64, len(cands)),
	}
	errList := make([]error, len(cands))

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	jobs := make(chan int)
	wg := &sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ci := range jobs {
				losses, err := crossValidate(opt, cands[ci], ci, folds, all, x, y)
				if err != nil {
					errList[ci] = err
					continue
				}
				res.FoldLosses[ci] = losses
				var sum float64
				for _, l := range losses {
					sum += l
				}
				res.Scores[ci] = -sum / float64(len(losses))
			}
		}()
	}
	for ci := range cands {
		jobs <- ci
	}
	close(jobs)
	wg.Wait()

	for _, err := range errList {
		if err != nil {
			return nil, err
		}
	}

	// Strictly-better comparison keeps the first-enumerated candidate on
	// ties.
	best := 0
	for ci := 1; ci < len(cands); ci++ {
		if res.Scores[ci] > res.Scores[best] {
			best = ci
		}
	}
	res.BestIndex = best
	res.Best = cands[best]

	cfg := cands[best].apply(opt.Base)
	cfg.Seed = opt.Seed
	res.BestConfig = cfg

	// A distinct refit on the complete input, not the best fold
	// estimator: reported training metrics describe the final model.
	final, err := nnet.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := final.Fit(x, y); err != nil {
		return nil, err
	}
	res.Final = final
	return res, nil
}

// crossValidate trains one fresh network per fold and returns the
// held-out MSE of each fold.
func crossValidate(opt Options, cand Candidate, ci int, folds [][]int, all []int, x *mat.Dense, y []float64) ([]float64, error) {
	losses := make([]float64, len(folds))
	for fi, fold := range folds {
		trainIdx := split.Complement(all, fold)

		cfg := cand.apply(opt.Base)
		// A stable per-candidate, per-fold seed keeps the evaluation
		// independent of worker scheduling.
		cfg.Seed = opt.Seed + int64(ci*len(folds)+fi+1)
		net, err := nnet.New(cfg)
		if err != nil {
			return nil, err
		}

		xt, yt := take(x, y, trainIdx)
		if err := net.Fit(xt, yt); err != nil {
			return nil, err
		}

		xv, yv := take(x, y, fold)
		pred, err := net.Predict(xv)
		if err != nil {
			return nil, err
		}
		var sum float64
		for i := range yv {
			d := pred[i] - yv[i]
			sum += d * d
		}
		losses[fi] = sum / float64(len(yv))
	}
	return losses, nil
}

func take(x *mat.Dense, y []float64, idxs []int) (*mat.Dense, []float64) {
	_, cols := x.Dims()
	xs := mat.NewDense(len(idxs), cols, nil)
	ys := make([]float64, len(idxs))
	for i, idx := range idxs {
		xs.SetRow(i, x.RawRowView(idx))
		ys[i] = y[idx]
	}
	return xs, ys
}
