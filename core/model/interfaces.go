package model

import "gonum.org/v1/gonum/mat"

// Transformer is the interface for fitted data transforms.
type Transformer interface {
	// Fit learns the transform parameters from training data.
	Fit(X mat.Matrix) error

	// Transform applies the fitted transform.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and transforms it in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// Fitter is the interface for trainable models.
type Fitter interface {
	// Fit trains the model on X with labels y (a column vector).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that predict labels.
type Predictor interface {
	// Predict returns predicted labels for X as a column vector.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that compute an evaluation score.
type Scorer interface {
	// Score returns the mean accuracy of Predict(X) against y.
	Score(X, y mat.Matrix) (float64, error)
}

// Classifier combines the interfaces every candidate model family
// implements. Clone must return an unfitted copy with identical
// hyperparameters; cross-validation relies on it to fit each fold from a
// clean state.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// Classes returns the unique class labels seen during fitting.
	Classes() []int

	// Clone returns an unfitted copy with the same hyperparameters.
	Clone() Classifier
}
