package split

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/errs"
)

func TestHoldoutPartition(t *testing.T) {
	train, hold, err := Holdout(10, 0.2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, hold, 2)
	assert.Len(t, train, 8)

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), hold...) {
		assert.False(t, seen[i], "index %d appears twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 10)
}

func TestHoldoutDeterminism(t *testing.T) {
	t1, h1, err := Holdout(50, 0.3, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	t2, h2, err := Holdout(50, 0.3, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
	assert.Equal(t, h1, h2)
}

func TestHoldoutSmallFractionStillHolds(t *testing.T) {
	_, hold, err := Holdout(10, 0.01, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, hold, 1)
}

func TestHoldoutErrors(t *testing.T) {
	_, _, err := Holdout(0, 0.2, rand.New(rand.NewSource(1)))
	var inv errs.InvalidInput
	require.ErrorAs(t, err, &inv)

	_, _, err = Holdout(10, 1.0, rand.New(rand.NewSource(1)))
	var conf errs.Configuration
	require.ErrorAs(t, err, &conf)
}

func TestKFoldPartition(t *testing.T) {
	idxs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	folds, err := KFold(idxs, 3, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	require.Len(t, folds, 3)

	seen := make(map[int]bool)
	for _, fold := range folds {
		// Sizes differ by at most one.
		assert.InDelta(t, float64(len(idxs))/3, float64(len(fold)), 1)
		for _, i := range fold {
			assert.False(t, seen[i])
			seen[i] = true
		}
	}
	assert.Len(t, seen, len(idxs))
}

func TestKFoldErrors(t *testing.T) {
	var conf errs.Configuration
	_, err := KFold([]int{1, 2, 3}, 4, rand.New(rand.NewSource(1)))
	require.ErrorAs(t, err, &conf)

	_, err = KFold([]int{1, 2, 3}, 1, rand.New(rand.NewSource(1)))
	require.ErrorAs(t, err, &conf)
}

func TestComplement(t *testing.T) {
	all := []int{3, 1, 4, 1, 5}
	got := Complement(all, []int{1})
	assert.Equal(t, []int{3, 4, 5}, got)
}
