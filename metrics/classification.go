// Package metrics computes binary classification metrics from predictions
// over the held-out test partition.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

// ConfusionMatrix is the 2x2 table of (actual, predicted) counts for the
// positive class DEATH_EVENT = 1. Rows are actual values, columns predicted.
type ConfusionMatrix struct {
	TP int // actual 1, predicted 1
	TN int // actual 0, predicted 0
	FP int // actual 0, predicted 1
	FN int // actual 1, predicted 0
}

// NewConfusionMatrix tallies yTrue against yPred. Both slices must have the
// same length and contain only 0/1 values.
func NewConfusionMatrix(yTrue, yPred []int) (*ConfusionMatrix, error) {
	if len(yTrue) == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty input")
	}
	if len(yTrue) != len(yPred) {
		return nil, errors.NewDimensionError("NewConfusionMatrix", len(yTrue), len(yPred), 0)
	}

	cm := &ConfusionMatrix{}
	for i := range yTrue {
		if yTrue[i] != 0 && yTrue[i] != 1 {
			return nil, errors.NewValueError("NewConfusionMatrix", "labels must be 0 or 1")
		}
		if yPred[i] != 0 && yPred[i] != 1 {
			return nil, errors.NewValueError("NewConfusionMatrix", "predictions must be 0 or 1")
		}
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			cm.TP++
		case yTrue[i] == 0 && yPred[i] == 0:
			cm.TN++
		case yTrue[i] == 0 && yPred[i] == 1:
			cm.FP++
		default:
			cm.FN++
		}
	}
	return cm, nil
}

// Total returns the number of scored rows; it always equals TP+TN+FP+FN.
func (cm *ConfusionMatrix) Total() int {
	return cm.TP + cm.TN + cm.FP + cm.FN
}

// Accuracy returns (TP+TN) / total.
func (cm *ConfusionMatrix) Accuracy() float64 {
	return float64(cm.TP+cm.TN) / float64(cm.Total())
}

// Precision returns TP / (TP+FP), defined as 0 when no positive predictions
// were made.
func (cm *ConfusionMatrix) Precision() float64 {
	if cm.TP+cm.FP == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted positives", 0))
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FP)
}

// Recall returns TP / (TP+FN), defined as 0 when no positive labels exist.
func (cm *ConfusionMatrix) Recall() float64 {
	if cm.TP+cm.FN == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no actual positives", 0))
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

// F1 returns the harmonic mean of precision and recall, defined as 0 when
// both are 0.
func (cm *ConfusionMatrix) F1() float64 {
	precision := cm.Precision()
	recall := cm.Recall()
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// Summary holds the derived scalar metrics, rounded for reporting.
type Summary struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// Summary computes all four metrics rounded to four decimals.
func (cm *ConfusionMatrix) Summary() Summary {
	return Summary{
		Accuracy:  Round(cm.Accuracy(), 4),
		Precision: Round(cm.Precision(), 4),
		Recall:    Round(cm.Recall(), 4),
		F1:        Round(cm.F1(), 4),
	}
}

// Round rounds v to the given number of decimal digits.
func Round(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}

// AccuracyScore returns the fraction of rows of yPred matching yTrue. Both
// must be n×1 matrices; this is the cross-validation scoring function.
func AccuracyScore(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 {
		return 0, errors.NewValueError("AccuracyScore", "empty input")
	}
	if cTrue != 1 || cPred != 1 {
		return 0, errors.NewValueError("AccuracyScore", "inputs must be column vectors")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AccuracyScore", rTrue, rPred, 0)
	}

	correct := 0
	for i := 0; i < rTrue; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rTrue), nil
}
