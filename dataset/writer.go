package dataset

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/heartml/heartml/pkg/errors"
)

// WriteCSV writes a table back to disk with the original 13-column header.
// Binary columns and the label are written as integers, numeric columns with
// the shortest round-trip representation.
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "dataset.WriteCSV: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header()); err != nil {
		return errors.Wrap(err, "dataset.WriteCSV: header")
	}

	binary := make(map[int]bool)
	for _, idx := range BinaryIndices() {
		binary[idx] = true
	}

	features := t.Features()
	labels := t.Labels()
	record := make([]string, len(FeatureColumns)+1)
	for i := 0; i < t.NumRows(); i++ {
		for j := range FeatureColumns {
			v := features.At(i, j)
			if binary[j] {
				record[j] = strconv.Itoa(int(v))
			} else {
				record[j] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		record[len(FeatureColumns)] = strconv.Itoa(labels[i])
		if err := w.Write(record); err != nil {
			return errors.Wrapf(err, "dataset.WriteCSV: row %d", i)
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "dataset.WriteCSV")
}
