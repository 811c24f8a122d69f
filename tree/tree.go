// Package tree implements the decision tree candidate model.
package tree

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/core/model"
	"github.com/heartml/heartml/metrics"
	"github.com/heartml/heartml/pkg/errors"
)

// node is a binary split or a leaf of the fitted tree.
type node struct {
	isLeaf    bool
	class     int
	feature   int
	threshold float64
	left      *node
	right     *node
}

// DecisionTreeClassifier is a CART-style classifier splitting on Gini
// impurity. Candidate thresholds are midpoints between consecutive sorted
// feature values; features are scanned in column order and a split is only
// replaced on strict improvement, so fitting is deterministic.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// MaxDepth limits tree depth; values < 1 mean unlimited.
	MaxDepth int

	// MinSamplesSplit is the minimum node size eligible for splitting.
	MinSamplesSplit int

	root    *node
	classes []int
}

// NewDecisionTreeClassifier creates a classifier with default limits:
// unlimited depth, minimum split size 2.
func NewDecisionTreeClassifier(maxDepth, minSamplesSplit int) *DecisionTreeClassifier {
	if minSamplesSplit < 2 {
		minSamplesSplit = 2
	}
	return &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
	}
}

// Fit grows the tree from X and the n×1 label matrix y.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector")
	}

	labels := make([]int, nSamples)
	classMap := make(map[int]bool)
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
		classMap[labels[i]] = true
	}
	dt.classes = make([]int, 0, len(classMap))
	for class := range classMap {
		dt.classes = append(dt.classes, class)
	}
	sort.Ints(dt.classes)

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	dt.root = dt.buildNode(X, labels, indices, 0)

	dt.state.SetDimensions(nFeatures, nSamples)
	dt.state.SetFitted()
	return nil
}

func (dt *DecisionTreeClassifier) buildNode(X mat.Matrix, labels, indices []int, depth int) *node {
	if (dt.MaxDepth >= 1 && depth >= dt.MaxDepth) ||
		len(indices) < dt.MinSamplesSplit ||
		isPure(labels, indices) {
		return &node{isLeaf: true, class: dt.majorityClass(labels, indices)}
	}

	feature, threshold, gain := dt.bestSplit(X, labels, indices)
	if gain <= 0 {
		return &node{isLeaf: true, class: dt.majorityClass(labels, indices)}
	}

	var left, right []int
	for _, idx := range indices {
		if X.At(idx, feature) < threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{isLeaf: true, class: dt.majorityClass(labels, indices)}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      dt.buildNode(X, labels, left, depth+1),
		right:     dt.buildNode(X, labels, right, depth+1),
	}
}

func (dt *DecisionTreeClassifier) bestSplit(X mat.Matrix, labels, indices []int) (int, float64, float64) {
	_, nFeatures := X.Dims()
	parentImpurity := dt.gini(labels, indices)
	n := float64(len(indices))

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0

	values := make([]float64, 0, len(indices))
	for feature := 0; feature < nFeatures; feature++ {
		values = values[:0]
		for _, idx := range indices {
			values = append(values, X.At(idx, feature))
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			threshold := (values[i] + values[i-1]) / 2

			var left, right []int
			for _, idx := range indices {
				if X.At(idx, feature) < threshold {
					left = append(left, idx)
				} else {
					right = append(right, idx)
				}
			}

			weighted := float64(len(left))/n*dt.gini(labels, left) +
				float64(len(right))/n*dt.gini(labels, right)
			gain := parentImpurity - weighted
			if gain > bestGain {
				bestFeature, bestThreshold, bestGain = feature, threshold, gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func (dt *DecisionTreeClassifier) gini(labels, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	counts := make(map[int]int)
	for _, idx := range indices {
		counts[labels[idx]]++
	}
	impurity := 1.0
	n := float64(len(indices))
	for _, count := range counts {
		p := float64(count) / n
		impurity -= p * p
	}
	return impurity
}

func (dt *DecisionTreeClassifier) majorityClass(labels, indices []int) int {
	counts := make(map[int]int)
	for _, idx := range indices {
		counts[labels[idx]]++
	}
	best, bestCount := 0, -1
	for _, class := range dt.classes {
		if counts[class] > bestCount {
			best, bestCount = class, counts[class]
		}
	}
	return best
}

func isPure(labels, indices []int) bool {
	for _, idx := range indices[1:] {
		if labels[idx] != labels[indices[0]] {
			return false
		}
	}
	return true
}

// Predict returns the leaf class for every row of X.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	trained, _ := dt.state.GetDimensions()
	if nFeatures != trained {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", trained, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		cur := dt.root
		for !cur.isLeaf {
			if X.At(i, cur.feature) < cur.threshold {
				cur = cur.left
			} else {
				cur = cur.right
			}
		}
		predictions.Set(i, 0, float64(cur.class))
	}
	return predictions, nil
}

// Score returns the mean accuracy of Predict(X) against y.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyScore(y, predictions)
}

// Classes returns the class labels seen during fitting, ascending.
func (dt *DecisionTreeClassifier) Classes() []int {
	return dt.classes
}

// Clone returns an unfitted copy with the same limits.
func (dt *DecisionTreeClassifier) Clone() model.Classifier {
	return NewDecisionTreeClassifier(dt.MaxDepth, dt.MinSamplesSplit)
}
