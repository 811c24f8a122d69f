package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	// Every column ends up with mean 0 and population std 1.
	r, c := scaled.Dims()
	for j := 0; j < c; j++ {
		sum, sumSquares := 0.0, 0.0
		for i := 0; i < r; i++ {
			sum += scaled.At(i, j)
			sumSquares += scaled.At(i, j) * scaled.At(i, j)
		}
		mean := sum / float64(r)
		std := math.Sqrt(sumSquares/float64(r) - mean*mean)
		assert.InDelta(t, 0, mean, 1e-12, "column %d mean", j)
		assert.InDelta(t, 1, std, 1e-12, "column %d std", j)
	}
}

func TestStandardScalerAppliesTrainStatistics(t *testing.T) {
	train := mat.NewDense(2, 1, []float64{0, 2}) // mean 1, std 1
	test := mat.NewDense(2, 1, []float64{3, -1})

	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(train))

	scaled, err := scaler.Transform(test)
	require.NoError(t, err)
	assert.Equal(t, 2.0, scaled.At(0, 0))
	assert.Equal(t, -2.0, scaled.At(1, 0))
}

func TestStandardScalerConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	// Zero variance scales by 1 instead of dividing by zero.
	assert.Equal(t, 1.0, scaler.Scale[0])
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, scaled.At(i, 0))
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScaler()
	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))
	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))

	_, err := scaler.Transform(mat.NewDense(2, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}
