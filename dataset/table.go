// Package dataset loads the heart-failure clinical-records file into an
// in-memory table and produces stratified train/test partitions.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

// Fixed input schema, in file column order.
var (
	// FeatureColumns are the 12 feature columns.
	FeatureColumns = []string{
		"age",
		"anaemia",
		"creatinine_phosphokinase",
		"diabetes",
		"ejection_fraction",
		"high_blood_pressure",
		"platelets",
		"serum_creatinine",
		"serum_sodium",
		"sex",
		"smoking",
		"time",
	}

	// NumericColumns are standardized during preprocessing.
	NumericColumns = []string{
		"age",
		"creatinine_phosphokinase",
		"ejection_fraction",
		"platelets",
		"serum_creatinine",
		"serum_sodium",
		"time",
	}

	// BinaryColumns are one-hot encoded during preprocessing.
	BinaryColumns = []string{
		"anaemia",
		"diabetes",
		"high_blood_pressure",
		"sex",
		"smoking",
	}
)

// LabelColumn is the binary outcome column: 1 if the patient died before the
// end of the follow-up period.
const LabelColumn = "DEATH_EVENT"

// Header returns the full file header: the 12 feature columns followed by
// the label column.
func Header() []string {
	h := make([]string, 0, len(FeatureColumns)+1)
	h = append(h, FeatureColumns...)
	return append(h, LabelColumn)
}

// Table is an immutable set of patient records: a dense feature matrix in
// file column order plus the 0/1 outcome labels.
type Table struct {
	features *mat.Dense
	labels   []int
}

// NewTable builds a table from a feature matrix and labels. The matrix must
// have len(FeatureColumns) columns and one row per label.
func NewTable(features *mat.Dense, labels []int) (*Table, error) {
	r, c := features.Dims()
	if c != len(FeatureColumns) {
		return nil, errors.NewDimensionError("dataset.NewTable", len(FeatureColumns), c, 1)
	}
	if r != len(labels) {
		return nil, errors.NewDimensionError("dataset.NewTable", len(labels), r, 0)
	}
	return &Table{features: features, labels: labels}, nil
}

// NumRows returns the number of patient records.
func (t *Table) NumRows() int {
	r, _ := t.features.Dims()
	return r
}

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int {
	_, c := t.features.Dims()
	return c
}

// Features returns the feature matrix. Callers must not mutate it.
func (t *Table) Features() mat.Matrix {
	return t.features
}

// Labels returns the outcome labels. Callers must not mutate the slice.
func (t *Table) Labels() []int {
	return t.labels
}

// LabelVector returns the labels as an n×1 matrix for estimator APIs.
func (t *Table) LabelVector() *mat.Dense {
	n := len(t.labels)
	y := mat.NewDense(n, 1, nil)
	for i, v := range t.labels {
		y.Set(i, 0, float64(v))
	}
	return y
}

// PositiveFraction returns the fraction of rows with a positive label.
func (t *Table) PositiveFraction() float64 {
	if len(t.labels) == 0 {
		return 0
	}
	pos := 0
	for _, v := range t.labels {
		if v == 1 {
			pos++
		}
	}
	return float64(pos) / float64(len(t.labels))
}

// ClassCounts returns the number of rows per label value.
func (t *Table) ClassCounts() map[int]int {
	counts := make(map[int]int)
	for _, v := range t.labels {
		counts[v]++
	}
	return counts
}

// Subset returns a new table containing the given rows, in the given order.
func (t *Table) Subset(indices []int) (*Table, error) {
	_, c := t.features.Dims()
	n := t.NumRows()
	features := mat.NewDense(len(indices), c, nil)
	labels := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.NewValueError("Table.Subset", "row index out of range")
		}
		for j := 0; j < c; j++ {
			features.Set(i, j, t.features.At(idx, j))
		}
		labels[i] = t.labels[idx]
	}
	return &Table{features: features, labels: labels}, nil
}

// ColumnIndex returns the position of a feature column in the matrix, or -1
// if the column does not exist.
func ColumnIndex(name string) int {
	for i, col := range FeatureColumns {
		if col == name {
			return i
		}
	}
	return -1
}

// NumericIndices returns the matrix positions of the numeric columns.
func NumericIndices() []int {
	idx := make([]int, len(NumericColumns))
	for i, name := range NumericColumns {
		idx[i] = ColumnIndex(name)
	}
	return idx
}

// BinaryIndices returns the matrix positions of the binary columns.
func BinaryIndices() []int {
	idx := make([]int, len(BinaryColumns))
	for i, name := range BinaryColumns {
		idx[i] = ColumnIndex(name)
	}
	return idx
}
