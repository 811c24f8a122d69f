// Package neighbors implements the k-nearest-neighbors candidate model.
package neighbors

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/core/model"
	"github.com/heartml/heartml/metrics"
	"github.com/heartml/heartml/pkg/errors"
)

// KNeighborsClassifier predicts by majority vote over the k training rows
// closest in Euclidean distance. Distance ties keep training-set order and
// vote ties go to the smaller class label, so predictions are deterministic.
type KNeighborsClassifier struct {
	state *model.StateManager

	// K is the number of neighbors consulted per prediction.
	K int

	xTrain  *mat.Dense
	yTrain  []int
	classes []int
}

// NewKNeighborsClassifier creates a classifier with the given neighbor
// count. Non-positive k falls back to 5.
func NewKNeighborsClassifier(k int) *KNeighborsClassifier {
	if k <= 0 {
		k = 5
	}
	return &KNeighborsClassifier{state: model.NewStateManager(), K: k}
}

// Fit stores a copy of the training data.
func (knn *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 {
		return errors.NewModelError("KNeighborsClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("KNeighborsClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("KNeighborsClassifier.Fit", "y must be a column vector")
	}
	if knn.K > nSamples {
		return errors.NewValidationError("n_neighbors", "must not exceed the number of training samples", knn.K)
	}

	knn.xTrain = mat.DenseCopyOf(X)
	knn.yTrain = make([]int, nSamples)
	classMap := make(map[int]bool)
	for i := 0; i < nSamples; i++ {
		label := int(y.At(i, 0))
		knn.yTrain[i] = label
		classMap[label] = true
	}
	knn.classes = make([]int, 0, len(classMap))
	for class := range classMap {
		knn.classes = append(knn.classes, class)
	}
	sort.Ints(knn.classes)

	knn.state.SetDimensions(nFeatures, nSamples)
	knn.state.SetFitted()
	return nil
}

// Predict returns the majority-vote label for every row of X.
func (knn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !knn.state.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	trained, _ := knn.state.GetDimensions()
	if nFeatures != trained {
		return nil, errors.NewDimensionError("KNeighborsClassifier.Predict", trained, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		predictions.Set(i, 0, float64(knn.predictRow(X, i)))
	}
	return predictions, nil
}

func (knn *KNeighborsClassifier) predictRow(X mat.Matrix, row int) int {
	nTrain, nFeatures := knn.xTrain.Dims()

	type neighbor struct {
		index    int
		distance float64
	}
	neighbors := make([]neighbor, nTrain)
	for t := 0; t < nTrain; t++ {
		sum := 0.0
		for j := 0; j < nFeatures; j++ {
			diff := X.At(row, j) - knn.xTrain.At(t, j)
			sum += diff * diff
		}
		neighbors[t] = neighbor{index: t, distance: math.Sqrt(sum)}
	}

	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].distance < neighbors[b].distance
	})

	votes := make(map[int]int)
	for _, nb := range neighbors[:knn.K] {
		votes[knn.yTrain[nb.index]]++
	}

	best := knn.classes[0]
	bestVotes := votes[best]
	for _, class := range knn.classes[1:] {
		if votes[class] > bestVotes {
			best = class
			bestVotes = votes[class]
		}
	}
	return best
}

// Score returns the mean accuracy of Predict(X) against y.
func (knn *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := knn.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, predictions)
}

// Classes returns the class labels seen during fitting, ascending.
func (knn *KNeighborsClassifier) Classes() []int {
	return knn.classes
}

// Clone returns an unfitted copy with the same neighbor count.
func (knn *KNeighborsClassifier) Clone() model.Classifier {
	return NewKNeighborsClassifier(knn.K)
}
