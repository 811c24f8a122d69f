package dataset

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

// Load reads the fixed-schema CSV file into a Table. The header must match
// the expected 13 columns exactly, in order. Every cell must be a parseable
// number, binary columns and the label must be 0 or 1, and no cell may be
// empty. Any violation is a fatal data-shape error.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.Load: parse %s", path)
	}
	if len(records) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.Load")
	}

	if err := checkHeader(records[0]); err != nil {
		return nil, err
	}

	binary := make(map[int]bool)
	for _, idx := range BinaryIndices() {
		binary[idx] = true
	}

	rows := records[1:]
	features := mat.NewDense(len(rows), len(FeatureColumns), nil)
	labels := make([]int, len(rows))

	for i, record := range rows {
		if len(record) != len(FeatureColumns)+1 {
			return nil, errors.NewDimensionError("dataset.Load", len(FeatureColumns)+1, len(record), 1)
		}
		for j, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				return nil, errors.Wrapf(errors.ErrMissingValues, "dataset.Load: row %d column %q", i+1, Header()[j])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "dataset.Load: row %d column %q", i+1, Header()[j])
			}
			if j == len(FeatureColumns) {
				if v != 0 && v != 1 {
					return nil, errors.NewValueError("dataset.Load", "label must be 0 or 1")
				}
				labels[i] = int(v)
				continue
			}
			if binary[j] && v != 0 && v != 1 {
				return nil, errors.NewValueError("dataset.Load", "binary column "+FeatureColumns[j]+" must be 0 or 1")
			}
			features.Set(i, j, v)
		}
	}

	return NewTable(features, labels)
}

func checkHeader(header []string) error {
	want := Header()
	if len(header) != len(want) {
		return errors.NewDimensionError("dataset.Load", len(want), len(header), 1)
	}
	for i, col := range header {
		if strings.TrimSpace(col) != want[i] {
			return errors.NewValueError("dataset.Load", "unexpected column "+col+" at position "+strconv.Itoa(i)+", want "+want[i])
		}
	}
	return nil
}
