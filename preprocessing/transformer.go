package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/core/model"
	"github.com/heartml/heartml/pkg/errors"
)

// ColumnTransformer applies a StandardScaler to the numeric columns and a
// OneHotEncoder to the binary columns of a feature matrix, producing the
// model-ready matrix with scaled numerics first and encoded binaries after.
//
// Fit must only ever see the training partition; Transform is then applied
// to both partitions with the fitted state.
type ColumnTransformer struct {
	state *model.StateManager

	numericIndices []int
	numericNames   []string
	binaryIndices  []int
	binaryNames    []string

	scaler  *StandardScaler
	encoder *OneHotEncoder

	nInputFeatures int
}

// NewColumnTransformer creates an unfitted transformer for the given column
// layout. Indices address columns of the input matrix; names are carried
// through to FeatureNames.
func NewColumnTransformer(numericIndices []int, numericNames []string, binaryIndices []int, binaryNames []string) *ColumnTransformer {
	return &ColumnTransformer{
		state:          model.NewStateManager(),
		numericIndices: numericIndices,
		numericNames:   numericNames,
		binaryIndices:  binaryIndices,
		binaryNames:    binaryNames,
		scaler:         NewStandardScaler(),
		encoder:        NewOneHotEncoder(),
	}
}

// Fit learns the scaling statistics and category sets from X.
func (c *ColumnTransformer) Fit(X mat.Matrix) error {
	r, cols := X.Dims()
	if r == 0 || cols == 0 {
		return errors.NewModelError("ColumnTransformer.Fit", "empty data", errors.ErrEmptyData)
	}
	for _, idx := range append(append([]int{}, c.numericIndices...), c.binaryIndices...) {
		if idx < 0 || idx >= cols {
			return errors.NewValueError("ColumnTransformer.Fit", "column index out of range")
		}
	}
	c.nInputFeatures = cols

	if err := c.scaler.Fit(selectColumns(X, c.numericIndices)); err != nil {
		return err
	}
	if err := c.encoder.Fit(selectColumns(X, c.binaryIndices)); err != nil {
		return err
	}

	c.state.SetDimensions(cols, r)
	c.state.SetFitted()
	return nil
}

// Transform applies the fitted transforms to X and concatenates the results.
func (c *ColumnTransformer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}

	r, cols := X.Dims()
	if cols != c.nInputFeatures {
		return nil, errors.NewDimensionError("ColumnTransformer.Transform", c.nInputFeatures, cols, 1)
	}

	scaled, err := c.scaler.Transform(selectColumns(X, c.numericIndices))
	if err != nil {
		return nil, err
	}
	encoded, err := c.encoder.Transform(selectColumns(X, c.binaryIndices))
	if err != nil {
		return nil, err
	}

	_, scaledCols := scaled.Dims()
	_, encodedCols := encoded.Dims()
	result := mat.NewDense(r, scaledCols+encodedCols, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < scaledCols; j++ {
			result.Set(i, j, scaled.At(i, j))
		}
		for j := 0; j < encodedCols; j++ {
			result.Set(i, scaledCols+j, encoded.At(i, j))
		}
	}
	return result, nil
}

// FitTransform fits on X and transforms it in one call.
func (c *ColumnTransformer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := c.Fit(X); err != nil {
		return nil, err
	}
	return c.Transform(X)
}

// FeatureNames returns the output column names: numeric names unchanged,
// binary names expanded per indicator.
func (c *ColumnTransformer) FeatureNames() ([]string, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "FeatureNames")
	}
	encoded, err := c.encoder.FeatureNames(c.binaryNames)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.numericNames)+len(encoded))
	names = append(names, c.numericNames...)
	return append(names, encoded...), nil
}

// NumOutputFeatures returns the width of the transformed matrix.
func (c *ColumnTransformer) NumOutputFeatures() int {
	return len(c.numericIndices) + c.encoder.NumOutputFeatures()
}

// Clone returns an unfitted transformer with the same column layout.
func (c *ColumnTransformer) Clone() *ColumnTransformer {
	return NewColumnTransformer(c.numericIndices, c.numericNames, c.binaryIndices, c.binaryNames)
}

func selectColumns(X mat.Matrix, indices []int) mat.Matrix {
	r, _ := X.Dims()
	result := mat.NewDense(r, len(indices), nil)
	for i := 0; i < r; i++ {
		for j, idx := range indices {
			result.Set(i, j, X.At(i, idx))
		}
	}
	return result
}
