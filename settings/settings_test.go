package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkaraoglan/ml-pressure-estimation-deepmlp-rfr-dtr/nnet"
)

func TestTrainingPresets(t *testing.T) {
	quick, err := Training(QuickTraining)
	require.NoError(t, err)
	assert.Equal(t, 200, quick.MaxEpochs)
	_, err = nnet.New(quick)
	require.NoError(t, err)

	thorough, err := Training(ThoroughTraining)
	require.NoError(t, err)
	assert.Greater(t, thorough.MaxEpochs, quick.MaxEpochs)
	assert.Zero(t, thorough.Seed)
	_, err = nnet.New(thorough)
	require.NoError(t, err)
}

func TestTrainingMissing(t *testing.T) {
	_, err := Training("nope")
	var missing Missing
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, sortedTraining, missing.Options)
	assert.Contains(t, err.Error(), "quick")
}

func TestSpacePresets(t *testing.T) {
	small, err := Space(SmallSpace)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, small.HiddenSize)

	paper, err := Space(PaperSpace)
	require.NoError(t, err)
	assert.Len(t, paper.Dropout, 3)

	_, err = Space("nope")
	var missing Missing
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, sortedSpaces, missing.Options)
}
