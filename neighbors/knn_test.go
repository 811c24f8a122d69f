package neighbors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

func TestKNNMemorizesWithK1(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
	y := mat.NewDense(4, 1, []float64{0, 1, 1, 0})

	knn := NewKNeighborsClassifier(1)
	require.NoError(t, knn.Fit(X, y))

	score, err := knn.Score(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestKNNMajorityVote(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{0, 0.1, 0.2, 10, 10.1})
	y := mat.NewDense(5, 1, []float64{0, 0, 0, 1, 1})

	knn := NewKNeighborsClassifier(3)
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(2, 1, []float64{0.05, 10.05}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))
}

func TestKNNVoteTieGoesToSmallerLabel(t *testing.T) {
	// Query equidistant from one row of each class with k=2.
	X := mat.NewDense(2, 1, []float64{0, 1})
	y := mat.NewDense(2, 1, []float64{0, 1})

	knn := NewKNeighborsClassifier(2)
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(1, 1, []float64{0.5}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
}

func TestKNNDefaultK(t *testing.T) {
	knn := NewKNeighborsClassifier(0)
	assert.Equal(t, 5, knn.K)
}

func TestKNNErrors(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{0, 1, 2})
	y := mat.NewDense(3, 1, []float64{0, 1, 0})

	t.Run("k exceeds samples", func(t *testing.T) {
		err := NewKNeighborsClassifier(4).Fit(X, y)
		var validationErr *errors.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})

	t.Run("not fitted", func(t *testing.T) {
		_, err := NewKNeighborsClassifier(1).Predict(X)
		var notFitted *errors.NotFittedError
		assert.True(t, errors.As(err, &notFitted))
	})

	t.Run("feature mismatch", func(t *testing.T) {
		knn := NewKNeighborsClassifier(1)
		require.NoError(t, knn.Fit(X, y))
		_, err := knn.Predict(mat.NewDense(1, 2, []float64{0, 0}))
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})
}

func TestKNNClone(t *testing.T) {
	knn := NewKNeighborsClassifier(7)
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	require.NoError(t, knn.Fit(X, y))

	clone := knn.Clone()
	_, err := clone.Predict(X)
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted), "clone must be unfitted")

	cloned, ok := clone.(*KNeighborsClassifier)
	require.True(t, ok)
	assert.Equal(t, 7, cloned.K)
}
