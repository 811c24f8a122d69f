package model_selection

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/core/model"
	"github.com/heartml/heartml/core/parallel"
	"github.com/heartml/heartml/pkg/errors"
)

// CVScore is the cross-validated result for a single grid point.
type CVScore struct {
	Param               float64
	MeanTrainScore      float64
	MeanValidationScore float64
}

// GridSearchResult is the full score table of one candidate family plus the
// selected grid point.
type GridSearchResult struct {
	Candidate string
	Scores    []CVScore
	BestParam float64
	BestScore float64
}

// GridSearchCV runs k-fold cross-validated accuracy scoring over a
// one-dimensional hyperparameter grid. Grid points are evaluated in parallel
// across CPU cores; fold scores are aggregated by mean, so the result does
// not depend on execution order.
type GridSearchCV struct {
	// Candidate names the model family in the result table.
	Candidate string

	// Grid holds the hyperparameter values to evaluate.
	Grid []float64

	// New builds an unfitted classifier for a grid point.
	New func(param float64) model.Classifier

	// Splitter generates the cross-validation folds.
	Splitter Splitter
}

// Run evaluates every grid point and returns the score table. The best
// parameter is the one with the highest mean validation score; ties resolve
// to the value appearing first in the grid, which for an ascending grid is
// the smallest. Any fold error aborts the search.
func (gs *GridSearchCV) Run(X, y mat.Matrix) (*GridSearchResult, error) {
	if len(gs.Grid) == 0 {
		return nil, errors.NewValueError("GridSearchCV.Run", "empty hyperparameter grid")
	}

	folds := gs.Splitter.Split(X, y)
	scores := make([]CVScore, len(gs.Grid))
	errs := make([]error, len(gs.Grid))

	parallel.Parallelize(len(gs.Grid), func(start, end int) {
		for g := start; g < end; g++ {
			scores[g], errs[g] = gs.evaluate(X, y, gs.Grid[g], folds)
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := &GridSearchResult{
		Candidate: gs.Candidate,
		Scores:    scores,
		BestParam: scores[0].Param,
		BestScore: scores[0].MeanValidationScore,
	}
	for _, score := range scores[1:] {
		if score.MeanValidationScore > result.BestScore {
			result.BestParam = score.Param
			result.BestScore = score.MeanValidationScore
		}
	}
	return result, nil
}

// evaluate cross-validates one grid point.
func (gs *GridSearchCV) evaluate(X, y mat.Matrix, param float64, folds []Fold) (CVScore, error) {
	trainMean, validationMean, err := CrossValidate(func() model.Classifier {
		return gs.New(param)
	}, X, y, folds)
	if err != nil {
		return CVScore{}, errors.Wrapf(err, "%s (param=%g)", gs.Candidate, param)
	}
	return CVScore{
		Param:               param,
		MeanTrainScore:      trainMean,
		MeanValidationScore: validationMean,
	}, nil
}

// CrossValidate fits a fresh classifier per fold and returns the mean train
// and validation accuracy over all folds.
func CrossValidate(newClf func() model.Classifier, X, y mat.Matrix, folds []Fold) (trainMean, validationMean float64, err error) {
	if len(folds) == 0 {
		return 0, 0, errors.NewValueError("CrossValidate", "no folds")
	}

	trainSum, validationSum := 0.0, 0.0
	for i, fold := range folds {
		trainX, trainY := extractSubset(X, y, fold.TrainIndices)
		testX, testY := extractSubset(X, y, fold.TestIndices)

		clf := newClf()
		if err := clf.Fit(trainX, trainY); err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d", i)
		}

		trainScore, err := clf.Score(trainX, trainY)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d train score", i)
		}
		validationScore, err := clf.Score(testX, testY)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d validation score", i)
		}
		trainSum += trainScore
		validationSum += validationScore
	}

	n := float64(len(folds))
	return trainSum / n, validationSum / n, nil
}

// IntRange returns {from, from+step, ...} up to and including to.
func IntRange(from, to, step int) []float64 {
	var values []float64
	for v := from; v <= to; v += step {
		values = append(values, float64(v))
	}
	return values
}

// LogSpace returns count values logarithmically spaced from 10^fromExp to
// 10^toExp inclusive.
func LogSpace(fromExp, toExp float64, count int) []float64 {
	if count == 1 {
		return []float64{math.Pow(10, fromExp)}
	}
	values := make([]float64, count)
	step := (toExp - fromExp) / float64(count-1)
	for i := range values {
		values[i] = math.Pow(10, fromExp+float64(i)*step)
	}
	return values
}
