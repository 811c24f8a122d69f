// Package report orchestrates the full analysis pipeline and produces the
// tables and figure artifacts embedded by the rendering layer.
package report

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/heartml/heartml/dataset"
	"github.com/heartml/heartml/metrics"
	"github.com/heartml/heartml/pkg/errors"
)

// ColumnSummary describes one feature column of the raw dataset.
type ColumnSummary struct {
	Name   string
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// DescribeColumns computes per-column summary statistics over a table.
func DescribeColumns(t *dataset.Table) []ColumnSummary {
	features := t.Features()
	column := make([]float64, t.NumRows())

	summaries := make([]ColumnSummary, len(dataset.FeatureColumns))
	for j, name := range dataset.FeatureColumns {
		mat.Col(column, j, features)
		summaries[j] = ColumnSummary{
			Name:   name,
			Min:    floats.Min(column),
			Max:    floats.Max(column),
			Mean:   stat.Mean(column, nil),
			StdDev: stat.StdDev(column, nil),
		}
	}
	return summaries
}

// MissingValueCounts returns the per-column count of missing cells. The
// loader rejects files with missing values, so a loaded table always reports
// zero everywhere; the table is still emitted as a report artifact.
func MissingValueCounts(t *dataset.Table) map[string]int {
	counts := make(map[string]int, len(dataset.FeatureColumns)+1)
	for _, name := range dataset.Header() {
		counts[name] = 0
	}
	return counts
}

// LabelDistribution is the class balance of one partition.
type LabelDistribution struct {
	Negative         int
	Positive         int
	PositiveFraction float64
}

// DistributionOf computes the label distribution of a table.
func DistributionOf(t *dataset.Table) LabelDistribution {
	counts := t.ClassCounts()
	return LabelDistribution{
		Negative:         counts[0],
		Positive:         counts[1],
		PositiveFraction: t.PositiveFraction(),
	}
}

// Coefficient pairs a transformed feature with its fitted model weight.
type Coefficient struct {
	Feature string
	Weight  float64
}

// RankCoefficients sorts features by descending absolute weight, breaking
// magnitude ties by feature name.
func RankCoefficients(featureNames []string, weights []float64) ([]Coefficient, error) {
	if len(featureNames) != len(weights) {
		return nil, errors.NewDimensionError("report.RankCoefficients", len(featureNames), len(weights), 1)
	}
	ranked := make([]Coefficient, len(weights))
	for i := range weights {
		ranked[i] = Coefficient{Feature: featureNames[i], Weight: weights[i]}
	}
	sort.Slice(ranked, func(i, j int) bool {
		ai, aj := abs(ranked[i].Weight), abs(ranked[j].Weight)
		if ai != aj {
			return ai > aj
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	return ranked, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// WriteConfusionMatrixCSV writes the 2x2 confusion matrix in the crosstab
// layout used by the report: rows actual, columns predicted.
func WriteConfusionMatrixCSV(path string, cm *metrics.ConfusionMatrix) error {
	records := [][]string{
		{"Actual", "Predicted 0", "Predicted 1"},
		{"0", strconv.Itoa(cm.TN), strconv.Itoa(cm.FP)},
		{"1", strconv.Itoa(cm.FN), strconv.Itoa(cm.TP)},
	}
	return writeCSV(path, records)
}

// WriteScoresCSV writes the metric summary as a single-row table.
func WriteScoresCSV(path string, summary metrics.Summary) error {
	records := [][]string{
		{"accuracy", "precision", "recall", "f1"},
		{
			formatScore(summary.Accuracy),
			formatScore(summary.Precision),
			formatScore(summary.Recall),
			formatScore(summary.F1),
		},
	}
	return writeCSV(path, records)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "report: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return errors.Wrapf(err, "report: write %s", path)
	}
	return nil
}
