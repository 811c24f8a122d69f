package report

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/dataset"
	"github.com/heartml/heartml/model_selection"
)

// writeSyntheticDataset writes a schema-conforming CSV with independent
// feature values, negatives first. Large enough that every cross-validation
// fold can serve the full neighbor grid.
func writeSyntheticDataset(t *testing.T, path string, negatives, positives int) {
	t.Helper()

	binary := make(map[int]bool)
	for _, idx := range dataset.BinaryIndices() {
		binary[idx] = true
	}

	rng := rand.New(rand.NewSource(99))
	n := negatives + positives
	features := mat.NewDense(n, len(dataset.FeatureColumns), nil)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range dataset.FeatureColumns {
			if binary[j] {
				features.Set(i, j, float64(rng.Intn(2)))
			} else {
				features.Set(i, j, 10+rng.Float64()*200)
			}
		}
		if i >= negatives {
			labels[i] = 1
		}
	}

	table, err := dataset.NewTable(features, labels)
	require.NoError(t, err)
	require.NoError(t, dataset.WriteCSV(path, table))
}

func TestRunEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full pipeline run")
	}

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "records.csv")
	writeSyntheticDataset(t, dataPath, 110, 50)

	cfg := DefaultConfig()
	cfg.DataPath = dataPath
	cfg.OutputDir = filepath.Join(dir, "out")

	result, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, 128, result.Train.NumRows())
	assert.Equal(t, 32, result.Test.NumRows())

	require.Len(t, result.Searches, 3)
	byName := make(map[string]int)
	for _, search := range result.Searches {
		byName[search.Candidate] = len(search.Scores)
	}
	assert.Equal(t, 1, byName[CandidateDecisionTree])
	assert.Equal(t, 33, byName[CandidateKNN])
	assert.Equal(t, 10, byName[CandidateLogisticRegression])

	assert.Equal(t, CandidateLogisticRegression, result.Selected.Candidate)
	assert.Contains(t, model_selection.LogSpace(-5, 4, 10), result.BestC)

	assert.Equal(t, 32, result.Confusion.Total())
	for name, score := range map[string]float64{
		"accuracy":  result.Scores.Accuracy,
		"precision": result.Scores.Precision,
		"recall":    result.Scores.Recall,
		"f1":        result.Scores.F1,
	} {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 1.0, name)
	}

	// 7 scaled numerics + 5 binary indicators.
	assert.Len(t, result.Coefficients, 12)

	for _, artifact := range []string{
		"train.csv",
		"test.csv",
		"correlation_heatmap.png",
		"cv_scores.png",
		"cv_scores_knn.png",
		"confusion_matrix.csv",
		"test_scores.csv",
	} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, artifact))
		assert.NoError(t, err, artifact)
	}
}

func TestRunDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("full pipeline run")
	}

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "records.csv")
	writeSyntheticDataset(t, dataPath, 110, 50)

	cfg := DefaultConfig()
	cfg.DataPath = dataPath

	first, err := Run(cfg)
	require.NoError(t, err)
	second, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, first.BestC, second.BestC)
	assert.Equal(t, first.Confusion, second.Confusion)
	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.Coefficients, second.Coefficients)
	for i := range first.Searches {
		assert.Equal(t, first.Searches[i].Scores, second.Searches[i].Scores)
	}
}

func TestRunMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataPath = filepath.Join(t.TempDir(), "absent.csv")
	_, err := Run(cfg)
	assert.Error(t, err)
}
