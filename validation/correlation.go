// Package validation implements the correlation data-quality gate run on the
// transformed training data before model search.
package validation

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/heartml/heartml/pkg/errors"
)

// Default thresholds of the correlation gate.
const (
	DefaultLabelThreshold = 0.9
	DefaultPairThreshold  = 0.92
)

// Report holds the correlation statistics of one training partition.
type Report struct {
	// FeatureNames labels the rows/columns of Matrix.
	FeatureNames []string

	// Matrix is the pairwise Pearson correlation of the features.
	Matrix *mat.SymDense

	// LabelAssociation is the absolute Pearson correlation of each
	// feature with the 0/1 outcome label.
	LabelAssociation []float64
}

// Validator computes correlation statistics and rejects a training partition
// when any feature is too predictive of the label or any feature pair is
// nearly collinear.
type Validator struct {
	LabelThreshold float64
	PairThreshold  float64
}

// NewValidator creates a validator with the default thresholds.
func NewValidator() *Validator {
	return &Validator{
		LabelThreshold: DefaultLabelThreshold,
		PairThreshold:  DefaultPairThreshold,
	}
}

// Analyze computes the correlation report for the transformed features X
// and labels y (one per row). Correlations against a constant column are
// undefined and reported as 0.
func (v *Validator) Analyze(X mat.Matrix, y []int, featureNames []string) (*Report, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("Validator.Analyze", "empty data", errors.ErrEmptyData)
	}
	if len(y) != r {
		return nil, errors.NewDimensionError("Validator.Analyze", r, len(y), 0)
	}
	if len(featureNames) != c {
		return nil, errors.NewDimensionError("Validator.Analyze", c, len(featureNames), 1)
	}

	matrix := mat.NewSymDense(c, nil)
	stat.CorrelationMatrix(matrix, X, nil)
	for i := 0; i < c; i++ {
		for j := i; j < c; j++ {
			if math.IsNaN(matrix.At(i, j)) {
				matrix.SetSym(i, j, 0)
			}
		}
	}

	labels := make([]float64, r)
	for i, label := range y {
		labels[i] = float64(label)
	}

	association := make([]float64, c)
	column := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(column, j, X)
		corr := stat.Correlation(column, labels, nil)
		if math.IsNaN(corr) {
			corr = 0
		}
		association[j] = math.Abs(corr)
	}

	return &Report{
		FeatureNames:     featureNames,
		Matrix:           matrix,
		LabelAssociation: association,
	}, nil
}

// Validate checks the report against the thresholds. A violation returns a
// ValidationError that halts the pipeline; there is no warning mode.
func (v *Validator) Validate(report *Report) error {
	for j, score := range report.LabelAssociation {
		if score > v.LabelThreshold {
			return errors.NewValidationError(
				report.FeatureNames[j],
				"feature-label association exceeds the maximum acceptable threshold",
				score,
			)
		}
	}

	n := len(report.FeatureNames)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			corr := math.Abs(report.Matrix.At(i, j))
			if corr > v.PairThreshold {
				return errors.NewValidationError(
					report.FeatureNames[i]+"/"+report.FeatureNames[j],
					"feature-feature correlation exceeds the maximum acceptable threshold",
					corr,
				)
			}
		}
	}
	return nil
}
