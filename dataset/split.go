package dataset

import (
	"math"
	"math/rand"
	"sort"

	"github.com/heartml/heartml/pkg/errors"
)

// StratifiedSplitter partitions a table into disjoint train/test subsets
// while preserving the label proportions of the full dataset. The same seed
// and input always produce the same partitions.
type StratifiedSplitter struct {
	TestFraction float64
	Seed         int64
}

// NewStratifiedSplitter creates a splitter. testFraction must be in (0, 1).
func NewStratifiedSplitter(testFraction float64, seed int64) *StratifiedSplitter {
	return &StratifiedSplitter{TestFraction: testFraction, Seed: seed}
}

// Split partitions t into train and test tables. Test rows are allocated per
// class by largest remainder so that the test size equals
// round(n * TestFraction) and every class with at least two rows is
// represented in the test partition. Returns an error when the label column
// has fewer than two classes.
func (s *StratifiedSplitter) Split(t *Table) (train, test *Table, err error) {
	if s.TestFraction <= 0 || s.TestFraction >= 1 {
		return nil, nil, errors.NewValidationError("test_fraction", "must be in (0, 1)", s.TestFraction)
	}

	n := t.NumRows()
	if n == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "StratifiedSplitter.Split")
	}

	classIndices := make(map[int][]int)
	for i, label := range t.Labels() {
		classIndices[label] = append(classIndices[label], i)
	}
	if len(classIndices) < 2 {
		return nil, nil, errors.Wrap(errors.ErrSingleClass, "StratifiedSplitter.Split")
	}

	// Iterate classes in sorted order so the shuffle sequence is
	// independent of map iteration order.
	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(s.Seed))
	for _, class := range classes {
		indices := classIndices[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	counts := s.allocateTestCounts(classes, classIndices, n)

	var trainIndices, testIndices []int
	for _, class := range classes {
		indices := classIndices[class]
		testCount := counts[class]
		testIndices = append(testIndices, indices[:testCount]...)
		trainIndices = append(trainIndices, indices[testCount:]...)
	}

	// Restore input row order within each partition.
	sort.Ints(trainIndices)
	sort.Ints(testIndices)

	train, err = t.Subset(trainIndices)
	if err != nil {
		return nil, nil, err
	}
	test, err = t.Subset(testIndices)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// allocateTestCounts distributes round(n * TestFraction) test slots across
// classes: floor(count * TestFraction) each, remaining slots by descending
// fractional remainder.
func (s *StratifiedSplitter) allocateTestCounts(classes []int, classIndices map[int][]int, n int) map[int]int {
	testTotal := int(math.Round(float64(n) * s.TestFraction))

	type remainder struct {
		class int
		frac  float64
	}

	counts := make(map[int]int, len(classes))
	remainders := make([]remainder, 0, len(classes))
	allocated := 0
	for _, class := range classes {
		exact := float64(len(classIndices[class])) * s.TestFraction
		base := int(math.Floor(exact))
		counts[class] = base
		allocated += base
		remainders = append(remainders, remainder{class: class, frac: exact - float64(base)})
	}

	sort.Slice(remainders, func(i, j int) bool {
		if remainders[i].frac != remainders[j].frac {
			return remainders[i].frac > remainders[j].frac
		}
		return remainders[i].class < remainders[j].class
	})
	for i := 0; allocated < testTotal && i < len(remainders); i++ {
		counts[remainders[i].class]++
		allocated++
	}

	// Every class with at least two rows keeps one row in each partition.
	for _, class := range classes {
		size := len(classIndices[class])
		if size < 2 {
			continue
		}
		if counts[class] == 0 {
			counts[class] = 1
			s.stealSlot(classes, classIndices, counts, class)
		}
		if counts[class] == size {
			counts[class] = size - 1
			s.giveSlot(classes, classIndices, counts, class)
		}
	}

	return counts
}

func (s *StratifiedSplitter) stealSlot(classes []int, classIndices map[int][]int, counts map[int]int, except int) {
	best, bestCount := -1, 1
	for _, class := range classes {
		if class == except {
			continue
		}
		if counts[class] > bestCount {
			best, bestCount = class, counts[class]
		}
	}
	if best >= 0 {
		counts[best]--
	}
}

func (s *StratifiedSplitter) giveSlot(classes []int, classIndices map[int][]int, counts map[int]int, except int) {
	for _, class := range classes {
		if class == except {
			continue
		}
		if counts[class] < len(classIndices[class])-1 {
			counts[class]++
			return
		}
	}
}
