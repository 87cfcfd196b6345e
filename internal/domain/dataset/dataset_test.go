package dataset

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/forestd/internal/domain"
)

func makeDataset(t *testing.T, n int) Dataset {
	t.Helper()
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := range features {
		features[i] = []float64{float64(i), float64(i * 2)}
		labels[i] = i % 3
	}
	ds, err := New(features, labels)
	require.NoError(t, err)
	return ds
}

func TestNew_Valid(t *testing.T) {
	ds := makeDataset(t, 6)

	assert.Equal(t, 6, ds.Len())
	assert.Equal(t, 2, ds.Arity())
	assert.Equal(t, 3, ds.NumClasses())
	assert.Equal(t, []int{0, 1, 2}, ds.Classes())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		features [][]float64
		labels   []int
	}{
		{"empty", nil, nil},
		{"length mismatch", [][]float64{{1}, {2}}, []int{0}},
		{"zero arity", [][]float64{{}}, []int{0}},
		{"ragged", [][]float64{{1, 2}, {3}}, []int{0, 1}},
		{"negative label", [][]float64{{1}, {2}}, []int{0, -1}},
		{"label at class cap", [][]float64{{1}, {2}}, []int{0, MaxClasses}},
		{"huge label", [][]float64{{1}, {2}}, []int{0, 2000000000}},
		{"nan", [][]float64{{math.NaN()}}, []int{0}},
		{"inf", [][]float64{{math.Inf(1)}}, []int{0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.features, tc.labels)
			assert.Error(t, err)
		})
	}
}

func TestNew_LargestAllowedLabel(t *testing.T) {
	ds, err := New([][]float64{{1}, {2}}, []int{0, MaxClasses - 1})
	require.NoError(t, err)
	assert.Equal(t, MaxClasses, ds.NumClasses())
}

func TestNew_CopiesInput(t *testing.T) {
	features := [][]float64{{1, 2}, {3, 4}}
	labels := []int{0, 1}
	ds, err := New(features, labels)
	require.NoError(t, err)

	features[0][0] = 99
	labels[0] = 7

	row, label := ds.Row(0)
	assert.Equal(t, []float64{1, 2}, row)
	assert.Equal(t, 0, label)

	got := ds.Features()
	got[1][1] = 42
	row, _ = ds.Row(1)
	assert.Equal(t, []float64{3, 4}, row)
}

func TestSplit_Sizes(t *testing.T) {
	ds := makeDataset(t, 10)

	train, test, err := ds.Split(0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, test.Len())
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, ds.Arity(), train.Arity())
	assert.Equal(t, ds.Arity(), test.Arity())
}

func TestSplit_Deterministic(t *testing.T) {
	ds := makeDataset(t, 50)

	train1, test1, err := ds.Split(0.3, 42)
	require.NoError(t, err)
	train2, test2, err := ds.Split(0.3, 42)
	require.NoError(t, err)

	assert.Equal(t, train1.Features(), train2.Features())
	assert.Equal(t, test1.Labels(), test2.Labels())

	_, test3, err := ds.Split(0.3, 7)
	require.NoError(t, err)
	assert.NotEqual(t, test1.Features(), test3.Features())
}

func TestSplit_Partition(t *testing.T) {
	ds := makeDataset(t, 20)
	train, test, err := ds.Split(0.25, 1)
	require.NoError(t, err)

	// Feature 0 is the original row index, so the union must be exactly 0..19.
	var seen []int
	for _, row := range append(train.Features(), test.Features()...) {
		seen = append(seen, int(row[0]))
	}
	sort.Ints(seen)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestSplit_InvalidFraction(t *testing.T) {
	ds := makeDataset(t, 10)
	for _, frac := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, _, err := ds.Split(frac, 42)
		assert.ErrorIs(t, err, domain.ErrInvalidSplit, "fraction %v", frac)
	}
}

func TestSplit_TooSmall(t *testing.T) {
	ds := makeDataset(t, 1)
	_, _, err := ds.Split(0.5, 42)
	assert.ErrorIs(t, err, domain.ErrInvalidSplit)
}
