package report

import (
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/core/model"
	"github.com/heartml/heartml/dataset"
	"github.com/heartml/heartml/linear_model"
	"github.com/heartml/heartml/metrics"
	"github.com/heartml/heartml/model_selection"
	"github.com/heartml/heartml/neighbors"
	"github.com/heartml/heartml/pkg/errors"
	"github.com/heartml/heartml/preprocessing"
	"github.com/heartml/heartml/tree"
	"github.com/heartml/heartml/validation"
)

// Candidate family names used in the score tables and figures.
const (
	CandidateDecisionTree       = "decision_tree"
	CandidateKNN                = "knn"
	CandidateLogisticRegression = "logistic_regression"
)

// Config holds the pipeline parameters. The defaults reproduce the published
// analysis exactly.
type Config struct {
	// DataPath is the heart-failure clinical-records CSV file.
	DataPath string

	// OutputDir receives all generated artifacts. Empty disables artifact
	// output, which keeps the computation side-effect free for tests.
	OutputDir string

	// Seed drives the train/test split, the fold shuffling and model
	// initialization.
	Seed int64

	// TestFraction is the held-out share of the dataset.
	TestFraction float64

	// Folds is the number of cross-validation folds.
	Folds int
}

// DefaultConfig returns the parameters of the published analysis.
func DefaultConfig() Config {
	return Config{
		Seed:         123,
		TestFraction: 0.2,
		Folds:        10,
	}
}

// Result collects everything the pipeline produces.
type Result struct {
	Train *dataset.Table
	Test  *dataset.Table

	Columns    []ColumnSummary
	Missing    map[string]int
	LabelFull  LabelDistribution
	LabelTrain LabelDistribution
	LabelTest  LabelDistribution

	Correlation *validation.Report

	Searches []*model_selection.GridSearchResult
	Selected *model_selection.GridSearchResult
	BestC    float64

	Model        *linear_model.LogisticRegression
	Confusion    *metrics.ConfusionMatrix
	Scores       metrics.Summary
	Coefficients []Coefficient
}

// Run executes the full analysis: load, split, preprocess, validate, search
// and evaluate. Grid points within one search run in parallel; every other
// stage is sequential. The first error aborts the run.
func Run(cfg Config) (*Result, error) {
	full, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset loaded",
		"path", cfg.DataPath,
		"rows", full.NumRows(),
		"positive_fraction", full.PositiveFraction())

	splitter := dataset.NewStratifiedSplitter(cfg.TestFraction, cfg.Seed)
	train, test, err := splitter.Split(full)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset split",
		"train_rows", train.NumRows(),
		"test_rows", test.NumRows())

	result := &Result{
		Train:      train,
		Test:       test,
		Columns:    DescribeColumns(full),
		Missing:    MissingValueCounts(full),
		LabelFull:  DistributionOf(full),
		LabelTrain: DistributionOf(train),
		LabelTest:  DistributionOf(test),
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "report: create %s", cfg.OutputDir)
		}
		if err := dataset.WriteCSV(filepath.Join(cfg.OutputDir, "train.csv"), train); err != nil {
			return nil, err
		}
		if err := dataset.WriteCSV(filepath.Join(cfg.OutputDir, "test.csv"), test); err != nil {
			return nil, err
		}
	}

	transformer := preprocessing.NewColumnTransformer(
		dataset.NumericIndices(), dataset.NumericColumns,
		dataset.BinaryIndices(), dataset.BinaryColumns,
	)
	trainX, err := transformer.FitTransform(train.Features())
	if err != nil {
		return nil, err
	}
	testX, err := transformer.Transform(test.Features())
	if err != nil {
		return nil, err
	}
	featureNames, err := transformer.FeatureNames()
	if err != nil {
		return nil, err
	}

	validator := validation.NewValidator()
	result.Correlation, err = validator.Analyze(trainX, train.Labels(), featureNames)
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(result.Correlation); err != nil {
		return nil, err
	}
	slog.Info("correlation gate passed", "features", len(featureNames))

	if cfg.OutputDir != "" {
		heatmapPath := filepath.Join(cfg.OutputDir, "correlation_heatmap.png")
		if err := SaveCorrelationHeatmap(result.Correlation, heatmapPath); err != nil {
			return nil, err
		}
	}

	trainY := train.LabelVector()
	result.Searches, err = runSearches(cfg, trainX, trainY)
	if err != nil {
		return nil, err
	}

	// Logistic regression is the model family of the published analysis;
	// the other score tables are reported for comparison only.
	for _, search := range result.Searches {
		if search.Candidate == CandidateLogisticRegression {
			result.Selected = search
		}
	}
	result.BestC = result.Selected.BestParam
	slog.Info("model selected",
		"candidate", result.Selected.Candidate,
		"c", result.BestC,
		"cv_accuracy", result.Selected.BestScore)

	if cfg.OutputDir != "" {
		for _, search := range result.Searches {
			switch search.Candidate {
			case CandidateLogisticRegression:
				path := filepath.Join(cfg.OutputDir, "cv_scores.png")
				if err := SaveCVCurve(search, path, true); err != nil {
					return nil, err
				}
			case CandidateKNN:
				path := filepath.Join(cfg.OutputDir, "cv_scores_knn.png")
				if err := SaveCVCurve(search, path, false); err != nil {
					return nil, err
				}
			}
		}
	}

	result.Model = linear_model.NewLogisticRegression(
		linear_model.WithC(result.BestC),
		linear_model.WithBalancedClassWeights(),
	)
	if err := result.Model.Fit(trainX, trainY); err != nil {
		return nil, err
	}

	predictions, err := result.Model.Predict(testX)
	if err != nil {
		return nil, err
	}
	result.Confusion, err = metrics.NewConfusionMatrix(test.Labels(), columnToInts(predictions))
	if err != nil {
		return nil, err
	}
	result.Scores = result.Confusion.Summary()
	slog.Info("held-out evaluation",
		"accuracy", result.Scores.Accuracy,
		"precision", result.Scores.Precision,
		"recall", result.Scores.Recall,
		"f1", result.Scores.F1)

	result.Coefficients, err = RankCoefficients(featureNames, result.Model.Coef())
	if err != nil {
		return nil, err
	}

	if cfg.OutputDir != "" {
		cmPath := filepath.Join(cfg.OutputDir, "confusion_matrix.csv")
		if err := WriteConfusionMatrixCSV(cmPath, result.Confusion); err != nil {
			return nil, err
		}
		scoresPath := filepath.Join(cfg.OutputDir, "test_scores.csv")
		if err := WriteScoresCSV(scoresPath, result.Scores); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// runSearches evaluates the three candidate families with identical folds.
func runSearches(cfg Config, trainX, trainY mat.Matrix) ([]*model_selection.GridSearchResult, error) {
	folds := model_selection.NewStratifiedKFold(cfg.Folds, true, cfg.Seed)

	searches := []*model_selection.GridSearchCV{
		{
			Candidate: CandidateDecisionTree,
			// Single default configuration; no hyperparameter sweep.
			Grid: []float64{0},
			New: func(_ float64) model.Classifier {
				return tree.NewDecisionTreeClassifier(0, 2)
			},
			Splitter: folds,
		},
		{
			Candidate: CandidateKNN,
			Grid:      model_selection.IntRange(1, 97, 3),
			New: func(param float64) model.Classifier {
				return neighbors.NewKNeighborsClassifier(int(param))
			},
			Splitter: folds,
		},
		{
			Candidate: CandidateLogisticRegression,
			Grid:      model_selection.LogSpace(-5, 4, 10),
			New: func(param float64) model.Classifier {
				return linear_model.NewLogisticRegression(
					linear_model.WithC(param),
					linear_model.WithBalancedClassWeights(),
				)
			},
			Splitter: folds,
		},
	}

	results := make([]*model_selection.GridSearchResult, len(searches))
	for i, search := range searches {
		result, err := search.Run(trainX, trainY)
		if err != nil {
			return nil, err
		}
		results[i] = result
		slog.Info("grid search finished",
			"candidate", result.Candidate,
			"grid_points", len(result.Scores),
			"best_param", result.BestParam,
			"best_cv_accuracy", result.BestScore)
	}
	return results, nil
}

// columnToInts converts an n×1 prediction matrix to integer labels.
func columnToInts(m mat.Matrix) []int {
	r, _ := m.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = int(m.At(i, 0))
	}
	return out
}
