package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/heartml/heartml/pkg/errors"
)

func TestLoad(t *testing.T) {
	table, err := Load(filepath.Join("testdata", "records.csv"))
	require.NoError(t, err)

	assert.Equal(t, 12, table.NumRows())
	assert.Equal(t, 12, table.NumFeatures())

	// Spot-check first row: age, anaemia, time, label.
	assert.Equal(t, 75.0, table.Features().At(0, 0))
	assert.Equal(t, 0.0, table.Features().At(0, 1))
	assert.Equal(t, 4.0, table.Features().At(0, 11))
	assert.Equal(t, 1, table.Labels()[0])

	counts := table.ClassCounts()
	assert.Equal(t, 5, counts[0])
	assert.Equal(t, 7, counts[1])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	header := "age,anaemia,creatinine_phosphokinase,diabetes,ejection_fraction,high_blood_pressure,platelets,serum_creatinine,serum_sodium,sex,smoking,time,DEATH_EVENT\n"
	row := "60,0,100,0,38,0,250000,1.0,137,1,0,100,0\n"

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := Load(write("empty.csv", header))
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("wrong header", func(t *testing.T) {
		bad := "age,anemia,creatinine_phosphokinase,diabetes,ejection_fraction,high_blood_pressure,platelets,serum_creatinine,serum_sodium,sex,smoking,time,DEATH_EVENT\n"
		_, err := Load(write("header.csv", bad+row))
		var valueErr *errors.ValueError
		assert.True(t, errors.As(err, &valueErr))
	})

	t.Run("empty cell", func(t *testing.T) {
		_, err := Load(write("missing.csv", header+"60,0,,0,38,0,250000,1.0,137,1,0,100,0\n"))
		assert.True(t, errors.Is(err, errors.ErrMissingValues))
	})

	t.Run("unparseable cell", func(t *testing.T) {
		_, err := Load(write("parse.csv", header+"sixty,0,100,0,38,0,250000,1.0,137,1,0,100,0\n"))
		assert.Error(t, err)
	})

	t.Run("non-binary indicator", func(t *testing.T) {
		_, err := Load(write("binary.csv", header+"60,2,100,0,38,0,250000,1.0,137,1,0,100,0\n"))
		var valueErr *errors.ValueError
		assert.True(t, errors.As(err, &valueErr))
	})

	t.Run("non-binary label", func(t *testing.T) {
		_, err := Load(write("label.csv", header+"60,0,100,0,38,0,250000,1.0,137,1,0,100,2\n"))
		var valueErr *errors.ValueError
		assert.True(t, errors.As(err, &valueErr))
	})
}

func TestWriteCSVRoundTrip(t *testing.T) {
	original, err := Load(filepath.Join("testdata", "records.csv"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, original))

	reloaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, original.Labels(), reloaded.Labels())
	assert.True(t, mat.Equal(original.Features(), reloaded.Features()))
}
