package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

// makeTable builds a table with the given class sizes; negatives come first
// and the age column carries a unique row id.
func makeTable(t *testing.T, negatives, positives int) *Table {
	t.Helper()
	n := negatives + positives
	features := mat.NewDense(n, len(FeatureColumns), nil)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		features.Set(i, 0, float64(i))
		if i >= negatives {
			labels[i] = 1
		}
	}
	table, err := NewTable(features, labels)
	require.NoError(t, err)
	return table
}

func rowIDs(table *Table) map[float64]bool {
	ids := make(map[float64]bool, table.NumRows())
	for i := 0; i < table.NumRows(); i++ {
		ids[table.Features().At(i, 0)] = true
	}
	return ids
}

func TestStratifiedSplitSizes(t *testing.T) {
	// Class sizes of the clinical-records file: 203 survivors, 96 deaths.
	table := makeTable(t, 203, 96)

	train, test, err := NewStratifiedSplitter(0.2, 123).Split(table)
	require.NoError(t, err)

	assert.Equal(t, 239, train.NumRows())
	assert.Equal(t, 60, test.NumRows())

	testCounts := test.ClassCounts()
	assert.Equal(t, 41, testCounts[0])
	assert.Equal(t, 19, testCounts[1])

	trainCounts := train.ClassCounts()
	assert.Equal(t, 162, trainCounts[0])
	assert.Equal(t, 77, trainCounts[1])

	// Class balance of both partitions stays close to the full dataset.
	full := table.PositiveFraction()
	assert.InDelta(t, full, train.PositiveFraction(), 1.0/float64(train.NumRows()))
	assert.InDelta(t, full, test.PositiveFraction(), 1.0/float64(test.NumRows()))
}

func TestStratifiedSplitDisjointCover(t *testing.T) {
	table := makeTable(t, 203, 96)

	train, test, err := NewStratifiedSplitter(0.2, 123).Split(table)
	require.NoError(t, err)

	trainIDs := rowIDs(train)
	testIDs := rowIDs(test)
	assert.Equal(t, train.NumRows(), len(trainIDs))
	assert.Equal(t, test.NumRows(), len(testIDs))

	for id := range testIDs {
		assert.False(t, trainIDs[id], "row %v in both partitions", id)
	}
	for i := 0; i < table.NumRows(); i++ {
		id := table.Features().At(i, 0)
		assert.True(t, trainIDs[id] || testIDs[id], "row %v lost", id)
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	table := makeTable(t, 203, 96)

	train1, test1, err := NewStratifiedSplitter(0.2, 123).Split(table)
	require.NoError(t, err)
	train2, test2, err := NewStratifiedSplitter(0.2, 123).Split(table)
	require.NoError(t, err)

	assert.True(t, mat.Equal(train1.Features(), train2.Features()))
	assert.True(t, mat.Equal(test1.Features(), test2.Features()))
	assert.Equal(t, train1.Labels(), train2.Labels())
	assert.Equal(t, test1.Labels(), test2.Labels())
}

func TestStratifiedSplitSeedChangesPartition(t *testing.T) {
	table := makeTable(t, 203, 96)

	_, test1, err := NewStratifiedSplitter(0.2, 123).Split(table)
	require.NoError(t, err)
	_, test2, err := NewStratifiedSplitter(0.2, 456).Split(table)
	require.NoError(t, err)

	assert.False(t, mat.Equal(test1.Features(), test2.Features()),
		"different seeds should select different test rows")
}

func TestStratifiedSplitMinorityRepresented(t *testing.T) {
	// Tiny minority class: both partitions still see it.
	table := makeTable(t, 10, 2)

	train, test, err := NewStratifiedSplitter(0.1, 7).Split(table)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, train.ClassCounts()[1], 1)
	assert.GreaterOrEqual(t, test.ClassCounts()[1], 1)
	assert.GreaterOrEqual(t, train.ClassCounts()[0], 1)
	assert.GreaterOrEqual(t, test.ClassCounts()[0], 1)
}

func TestStratifiedSplitErrors(t *testing.T) {
	t.Run("single class", func(t *testing.T) {
		table := makeTable(t, 10, 0)
		_, _, err := NewStratifiedSplitter(0.2, 123).Split(table)
		assert.True(t, errors.Is(err, errors.ErrSingleClass))
	})

	t.Run("fraction out of range", func(t *testing.T) {
		table := makeTable(t, 10, 5)
		for _, fraction := range []float64{0, 1, -0.5, 1.5} {
			_, _, err := NewStratifiedSplitter(fraction, 123).Split(table)
			var validationErr *errors.ValidationError
			assert.True(t, errors.As(err, &validationErr), "fraction %v", fraction)
		}
	})
}
