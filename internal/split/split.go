// Package split provides seeded, deterministic index partitions used by
// the trainer, the grid search and the experiment runner. All partitions
// are disjoint and exhaustive over the index set they divide.
package split

import (
	"fmt"
	"math/rand"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

// Holdout partitions [0, n) into a training set and a held-out set of
// round(n*fraction) indices, at least one when fraction > 0. The
// permutation is drawn from rng, so an identical seed reproduces the
// partition exactly.
func Holdout(n int, fraction float64, rng *rand.Rand) (train, hold []int, err error) {
	if n <= 0 {
		return nil, nil, errs.InvalidInput{Reason: "holdout split: no samples"}
	}
	if fraction < 0 || fraction >= 1 {
		return nil, nil, errs.Configuration{Option: "fraction", Reason: fmt.Sprintf("must be in [0,1), got %v", fraction)}
	}
	nHold := int(float64(n)*fraction + 0.5)
	if fraction > 0 && nHold == 0 {
		nHold = 1
	}
	if nHold >= n {
		nHold = n - 1
	}
	perm := rng.Perm(n)
	hold = append([]int(nil), perm[:nHold]...)
	train = append([]int(nil), perm[nHold:]...)
	return train, hold, nil
}

// KFold partitions the given indices into k folds whose sizes differ by
// at most one. The assignment is a seeded permutation dealt round-robin,
// so every index lands in exactly one fold.
func KFold(idxs []int, k int, rng *rand.Rand) ([][]int, error) {
	n := len(idxs)
	if k < 2 {
		return nil, errs.Configuration{Option: "folds", Reason: fmt.Sprintf("need at least 2 folds, got %d", k)}
	}
	if k > n {
		return nil, errs.Configuration{Option: "folds", Reason: fmt.Sprintf("%d folds exceed %d samples", k, n)}
	}
	perm := rng.Perm(n)
	folds := make([][]int, k)
	for i, p := range perm {
		folds[i%k] = append(folds[i%k], idxs[p])
	}
	return folds, nil
}

// Complement returns all indices from idxs not present in exclude,
// preserving order. Used to build the training side of one fold.
func Complement(idxs, exclude []int) []int {
	skip := make(map[int]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	keep := make([]int, 0, len(idxs)-len(exclude))
	for _, i := range idxs {
		if _, ok := skip[i]; !ok {
			keep = append(keep, i)
		}
	}
	return keep
}
