package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

func TestDecisionTreeSeparable(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 10, 11, 12})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier(0, 2)
	require.NoError(t, dt.Fit(X, y))

	score, err := dt.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	// The single split lands on the midpoint gap.
	pred, err := dt.Predict(mat.NewDense(2, 1, []float64{5, 8}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))
}

func TestDecisionTreeTwoLevelSplit(t *testing.T) {
	// Positive band in the middle: needs two splits on the same feature.
	X := mat.NewDense(6, 1, []float64{1, 2, 5, 6, 9, 10})
	y := mat.NewDense(6, 1, []float64{0, 0, 1, 1, 0, 0})

	dt := NewDecisionTreeClassifier(0, 2)
	require.NoError(t, dt.Fit(X, y))

	score, err := dt.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestDecisionTreeDepthLimit(t *testing.T) {
	// XOR cannot improve Gini with a single axis split; the stump falls
	// back to a majority leaf.
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(4, 1, []float64{0, 1, 1, 0})

	dt := NewDecisionTreeClassifier(1, 2)
	require.NoError(t, dt.Fit(X, y))

	pred, err := dt.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0.0, pred.At(i, 0), "majority leaf with the tie broken to the smaller class")
	}
}

func TestDecisionTreePureData(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{1, 1, 1})

	dt := NewDecisionTreeClassifier(0, 2)
	require.NoError(t, dt.Fit(X, y))

	pred, err := dt.Predict(mat.NewDense(1, 1, []float64{99}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.At(0, 0))
}

func TestDecisionTreeDeterministic(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		1, 5,
		2, 3,
		3, 8,
		4, 1,
		5, 9,
		6, 2,
		7, 7,
		8, 4,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 1, 0, 1, 0, 1, 1})

	first := NewDecisionTreeClassifier(0, 2)
	require.NoError(t, first.Fit(X, y))
	second := NewDecisionTreeClassifier(0, 2)
	require.NoError(t, second.Fit(X, y))

	pred1, err := first.Predict(X)
	require.NoError(t, err)
	pred2, err := second.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(pred1, pred2))
}

func TestDecisionTreeErrors(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		_, err := NewDecisionTreeClassifier(0, 2).Predict(mat.NewDense(1, 1, []float64{0}))
		var notFitted *errors.NotFittedError
		assert.True(t, errors.As(err, &notFitted))
	})

	t.Run("feature mismatch", func(t *testing.T) {
		dt := NewDecisionTreeClassifier(0, 2)
		X := mat.NewDense(2, 1, []float64{0, 1})
		y := mat.NewDense(2, 1, []float64{0, 1})
		require.NoError(t, dt.Fit(X, y))
		_, err := dt.Predict(mat.NewDense(1, 2, []float64{0, 0}))
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})
}

func TestDecisionTreeClone(t *testing.T) {
	dt := NewDecisionTreeClassifier(3, 4)
	clone := dt.Clone()

	cloned, ok := clone.(*DecisionTreeClassifier)
	require.True(t, ok)
	assert.Equal(t, 3, cloned.MaxDepth)
	assert.Equal(t, 4, cloned.MinSamplesSplit)

	_, err := clone.Predict(mat.NewDense(1, 1, []float64{0}))
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}
