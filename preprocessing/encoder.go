package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/core/model"
	"github.com/heartml/heartml/pkg/errors"
)

// OneHotEncoder encodes categorical columns as 0/1 indicator columns.
//
// A column with exactly two observed categories collapses to a single
// indicator of the higher category, so 0/1 inputs stay one column wide.
// Categories unseen during Fit encode as all zeros; they never raise an
// error. Column count mismatches at transform time are fatal.
type OneHotEncoder struct {
	state *model.StateManager

	// Categories holds the sorted category values observed per column.
	Categories [][]float64

	// NFeatures is the number of input columns seen during Fit.
	NFeatures int
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{state: model.NewStateManager()}
}

// Fit learns the category set of every column of X.
func (e *OneHotEncoder) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}

	e.NFeatures = c
	e.Categories = make([][]float64, c)
	for j := 0; j < c; j++ {
		seen := make(map[float64]bool)
		for i := 0; i < r; i++ {
			seen[X.At(i, j)] = true
		}
		categories := make([]float64, 0, len(seen))
		for v := range seen {
			categories = append(categories, v)
		}
		sort.Float64s(categories)
		e.Categories[j] = categories
	}

	e.state.SetDimensions(c, r)
	e.state.SetFitted()
	return nil
}

// Transform encodes X with the fitted category sets.
func (e *OneHotEncoder) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}

	r, c := X.Dims()
	if c != e.NFeatures {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", e.NFeatures, c, 1)
	}

	result := mat.NewDense(r, e.NumOutputFeatures(), nil)
	for i := 0; i < r; i++ {
		offset := 0
		for j := 0; j < c; j++ {
			width := e.columnWidth(j)
			v := X.At(i, j)
			if len(e.Categories[j]) == 2 {
				// Binary column: indicator of the higher category.
				if v == e.Categories[j][1] {
					result.Set(i, offset, 1)
				}
			} else {
				for k, category := range e.Categories[j] {
					if v == category {
						result.Set(i, offset+k, 1)
						break
					}
				}
			}
			offset += width
		}
	}
	return result, nil
}

// FitTransform fits on X and transforms it in one call.
func (e *OneHotEncoder) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}
	return e.Transform(X)
}

// NumOutputFeatures returns the total width of the encoded output.
func (e *OneHotEncoder) NumOutputFeatures() int {
	total := 0
	for j := range e.Categories {
		total += e.columnWidth(j)
	}
	return total
}

// FeatureNames expands the input column names into encoded column names:
// "name_<category>" per indicator, or a single "name_<high>" for binary
// columns.
func (e *OneHotEncoder) FeatureNames(columns []string) ([]string, error) {
	if !e.state.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "FeatureNames")
	}
	if len(columns) != e.NFeatures {
		return nil, errors.NewDimensionError("OneHotEncoder.FeatureNames", e.NFeatures, len(columns), 1)
	}

	names := make([]string, 0, e.NumOutputFeatures())
	for j, col := range columns {
		if len(e.Categories[j]) == 2 {
			names = append(names, fmt.Sprintf("%s_%g", col, e.Categories[j][1]))
			continue
		}
		for _, category := range e.Categories[j] {
			names = append(names, fmt.Sprintf("%s_%g", col, category))
		}
	}
	return names, nil
}

func (e *OneHotEncoder) columnWidth(j int) int {
	if len(e.Categories[j]) == 2 {
		return 1
	}
	return len(e.Categories[j])
}
