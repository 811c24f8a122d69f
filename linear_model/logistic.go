// Package linear_model implements the logistic regression classifier used
// as the final model of the pipeline.
package linear_model

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/core/model"
	"github.com/heartml/heartml/metrics"
	"github.com/heartml/heartml/pkg/errors"
)

// LogisticRegression is a binary logistic regression classifier trained by
// full-batch gradient descent with an L2 penalty.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	c            float64 // Inverse regularization strength
	balanced     bool    // Balanced class weights
	fitIntercept bool
	maxIter      int
	tol          float64
	randomState  int64

	// Fitted parameters
	coef      []float64
	intercept float64
	classes   []int
	nFeatures int
}

// Option is a functional option for LogisticRegression.
type Option func(*LogisticRegression)

// NewLogisticRegression creates a classifier with scikit-learn-compatible
// defaults: C=1, L2 penalty, intercept, 1000 iterations, tolerance 1e-4.
func NewLogisticRegression(opts ...Option) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		c:            1.0,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-4,
		randomState:  -1,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithC sets the inverse regularization strength.
func WithC(c float64) Option {
	return func(lr *LogisticRegression) {
		lr.c = c
	}
}

// WithBalancedClassWeights weights samples inversely proportional to class
// frequency: n_samples / (n_classes * count(class)).
func WithBalancedClassWeights() Option {
	return func(lr *LogisticRegression) {
		lr.balanced = true
	}
}

// WithMaxIter sets the maximum number of gradient descent iterations.
func WithMaxIter(maxIter int) Option {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithTol sets the gradient-norm stopping tolerance.
func WithTol(tol float64) Option {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithRandomState fixes the seed for weight initialization. Negative seeds
// use zero initialization, which is fully deterministic.
func WithRandomState(seed int64) Option {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

// C returns the inverse regularization strength.
func (lr *LogisticRegression) C() float64 {
	return lr.c
}

// Fit trains the classifier. y must be an n×1 matrix of 0/1 labels with both
// classes present. Refitting discards all previous state, so repeated fits
// with the same data and seed produce identical coefficients.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}

	labels, classes, err := extractBinaryLabels(y)
	if err != nil {
		return err
	}
	lr.classes = classes
	lr.nFeatures = nFeatures

	weights := lr.sampleWeights(labels, nSamples)

	lr.coef = make([]float64, nFeatures)
	lr.intercept = 0
	if lr.randomState >= 0 {
		rng := rand.New(rand.NewSource(lr.randomState))
		for j := range lr.coef {
			lr.coef[j] = rng.NormFloat64() * 0.01
		}
	}

	weightSum := 0.0
	for _, w := range weights {
		weightSum += w
	}

	lambda := 1.0 / lr.c
	// Keep the step size below the contraction bound of the ridge term;
	// strong regularization would otherwise diverge.
	baseLearningRate := 1.0 / (1.0 + lambda/float64(nSamples))
	converged := false

	for iter := 0; iter < lr.maxIter; iter++ {
		gradCoef := make([]float64, nFeatures)
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := lr.intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * lr.coef[j]
			}
			residual := weights[i] * (sigmoid(z) - labels[i])
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradCoef[j] += residual * X.At(i, j)
			}
		}

		for j := range gradCoef {
			gradCoef[j] = gradCoef[j]/weightSum + lambda*lr.coef[j]/float64(nSamples)
		}
		gradIntercept /= weightSum

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range lr.coef {
			lr.coef[j] -= learningRate * gradCoef[j]
		}
		if lr.fitIntercept {
			lr.intercept -= learningRate * gradIntercept
		}

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradCoef {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter))
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// sampleWeights returns per-sample weights: uniform, or inversely
// proportional to class frequency when balanced weighting is enabled.
func (lr *LogisticRegression) sampleWeights(labels []float64, nSamples int) []float64 {
	weights := make([]float64, nSamples)
	if !lr.balanced {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	positives := 0
	for _, v := range labels {
		if v == 1 {
			positives++
		}
	}
	negatives := nSamples - positives
	posWeight := float64(nSamples) / (2 * float64(positives))
	negWeight := float64(nSamples) / (2 * float64(negatives))
	for i, v := range labels {
		if v == 1 {
			weights[i] = posWeight
		} else {
			weights[i] = negWeight
		}
	}
	return weights
}

// Predict returns the predicted class labels for X as an n×1 matrix.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	probas, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if probas.At(i, 1) >= 0.5 {
			predictions.Set(i, 0, float64(lr.classes[1]))
		} else {
			predictions.Set(i, 0, float64(lr.classes[0]))
		}
	}
	return predictions, nil
}

// PredictProba returns an n×2 matrix of class probabilities, columns ordered
// by ascending class label.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !lr.state.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != lr.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", lr.nFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		z := lr.intercept
		for j := 0; j < nFeatures; j++ {
			z += X.At(i, j) * lr.coef[j]
		}
		p := sigmoid(z)
		probas.Set(i, 0, 1-p)
		probas.Set(i, 1, p)
	}
	return probas, nil
}

// Score returns the mean accuracy of Predict(X) against y.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, predictions)
}

// Classes returns the class labels seen during fitting, ascending.
func (lr *LogisticRegression) Classes() []int {
	return lr.classes
}

// Coef returns the fitted coefficients, one per input feature. The returned
// slice is a copy.
func (lr *LogisticRegression) Coef() []float64 {
	coef := make([]float64, len(lr.coef))
	copy(coef, lr.coef)
	return coef
}

// Intercept returns the fitted intercept.
func (lr *LogisticRegression) Intercept() float64 {
	return lr.intercept
}

// Clone returns an unfitted copy with identical hyperparameters.
func (lr *LogisticRegression) Clone() model.Classifier {
	clone := &LogisticRegression{
		state:        model.NewStateManager(),
		c:            lr.c,
		balanced:     lr.balanced,
		fitIntercept: lr.fitIntercept,
		maxIter:      lr.maxIter,
		tol:          lr.tol,
		randomState:  lr.randomState,
	}
	return clone
}

// extractBinaryLabels converts an n×1 label matrix into 0/1 values relative
// to the sorted class pair. Exactly two distinct labels are required.
func extractBinaryLabels(y mat.Matrix) ([]float64, []int, error) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}
	if len(classMap) != 2 {
		return nil, nil, errors.Wrap(errors.ErrSingleClass, "LogisticRegression.Fit")
	}

	classes := make([]int, 0, 2)
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	labels := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if int(y.At(i, 0)) == classes[1] {
			labels[i] = 1
		}
	}
	return labels, classes, nil
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
