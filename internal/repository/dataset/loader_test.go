package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/forestd/internal/domain"
)

func TestReference_Iris(t *testing.T) {
	ds, err := Reference()
	require.NoError(t, err)

	assert.Equal(t, 150, ds.Len())
	assert.Equal(t, 4, ds.Arity())
	assert.Equal(t, 3, ds.NumClasses())

	row, label := ds.Row(0)
	assert.Equal(t, []float64{5.1, 3.5, 1.4, 0.2}, row)
	assert.Equal(t, 0, label)

	counts := map[int]int{}
	for _, l := range ds.Labels() {
		counts[l]++
	}
	assert.Equal(t, map[int]int{0: 50, 1: 50, 2: 50}, counts)
}

func TestLoader_EmptySourceUsesReference(t *testing.T) {
	l := New("")
	assert.Equal(t, ReferenceName, l.Source())

	ds, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 150, ds.Len())
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rows    int
		arity   int
		wantErr bool
	}{
		{"with header", "a,b,label\n1,2,0\n3,4,1\n", 2, 2, false},
		{"no header", "1,2,0\n3,4,1\n5,6,2\n", 3, 2, false},
		{"float label", "1,2,1.0\n", 1, 2, false},
		{"spaces", "1, 2, 0\n", 1, 2, false},
		{"fractional label", "1,2,0.5\n", 0, 0, true},
		{"bad feature", "1,x,0\n2,3,1\n", 0, 0, true},
		{"single column", "1\n", 0, 0, true},
		{"ragged", "1,2,0\n1,0\n", 0, 0, true},
		{"header only", "a,b,label\n", 0, 0, true},
		{"empty", "", 0, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := ReadCSV(strings.NewReader(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.rows, ds.Len())
			assert.Equal(t, tc.arity, ds.Arity())
		})
	}
}

func TestLoader_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y,label\n0.5,1.5,1\n2.5,3.5,0\n"), 0o600))

	ds, err := New(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []int{1, 0}, ds.Labels())
}

func TestLoader_ParquetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.parquet")
	rows := []parquetRow{
		{Features: []float64{1, 2, 3}, Label: 0},
		{Features: []float64{4, 5, 6}, Label: 1},
		{Features: []float64{7, 8, 9}, Label: 2},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	ds, err := New(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 3, ds.Arity())
	assert.Equal(t, []int{0, 1, 2}, ds.Labels())

	row, _ := ds.Row(2)
	assert.Equal(t, []float64{7, 8, 9}, row)
}

func TestWriteParquet_ReferenceRoundTrip(t *testing.T) {
	ref, err := Reference()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "iris.parquet")
	require.NoError(t, WriteParquet(path, ref))

	ds, err := New(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ref.Len(), ds.Len())
	assert.Equal(t, ref.Labels(), ds.Labels())
	assert.Equal(t, ref.Features(), ds.Features())
}

func TestLoader_Unavailable(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.parquet")
	require.NoError(t, os.WriteFile(corrupt, []byte("not parquet"), 0o600))

	tests := []struct {
		name   string
		source string
	}{
		{"missing csv", filepath.Join(dir, "missing.csv")},
		{"missing parquet", filepath.Join(dir, "missing.parquet")},
		{"corrupt parquet", corrupt},
		{"unknown extension", filepath.Join(dir, "data.json")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.source).Load(context.Background())
			assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)
		})
	}
}

func TestLoader_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("").Load(ctx)
	assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_HugeLabelUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.csv")
	require.NoError(t, os.WriteFile(path, []byte("1.0,2.0,0\n3.0,4.0,2000000000\n"), 0o600))

	_, err := New(path).Load(context.Background())
	require.ErrorIs(t, err, domain.ErrDatasetUnavailable)
}
