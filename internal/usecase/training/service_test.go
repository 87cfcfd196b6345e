package training

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/forestd/internal/artifact"
	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/domain/dataset"
	"github.com/kailas-cloud/forestd/internal/forest"
	dsrepo "github.com/kailas-cloud/forestd/internal/repository/dataset"
)

// --- Mocks ---

type mockLoader struct {
	ds  dataset.Dataset
	err error
}

func (m *mockLoader) Load(_ context.Context) (dataset.Dataset, error) {
	return m.ds, m.err
}

func (m *mockLoader) Source() string { return "mock" }

type mockFitter struct {
	model domain.Model
	err   error
	seen  int
}

func (m *mockFitter) Fit(ds dataset.Dataset) (domain.Model, error) {
	m.seen = ds.Len()
	return m.model, m.err
}

type mockWriter struct {
	err   error
	saved domain.Model
}

func (m *mockWriter) Save(_ context.Context, model domain.Model) error {
	if m.err != nil {
		return m.err
	}
	m.saved = model
	return nil
}
func (m *mockWriter) Path() string { return "mock.forest" }

type constModel struct {
	arity int
	label int
}

func (c constModel) ExpectedArity() int { return c.arity }
func (c constModel) Predict(batch [][]float64) ([]int, error) {
	out := make([]int, len(batch))
	for i := range out {
		out[i] = c.label
	}
	return out, nil
}

func tinyDataset(t *testing.T) dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[][]float64{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}, {8}, {9}},
		[]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	)
	require.NoError(t, err)
	return ds
}

// --- Tests ---

func TestRun_Success(t *testing.T) {
	fitter := &mockFitter{model: constModel{arity: 1, label: 0}}
	writer := &mockWriter{}
	svc := New(&mockLoader{ds: tinyDataset(t)}, fitter, writer, nil)

	r, err := svc.Run(context.Background(), Params{TestFraction: 0.3, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 7, r.TrainSize)
	assert.Equal(t, 3, r.TestSize)
	assert.Equal(t, 7, fitter.seen)
	assert.InDelta(t, 1.0, r.Accuracy, 1e-9)
	assert.Equal(t, "mock.forest", r.Path)
	assert.Equal(t, "mock", r.Source)
	assert.NotNil(t, writer.saved)
}

func TestRun_DefaultTestFraction(t *testing.T) {
	svc := New(&mockLoader{ds: tinyDataset(t)}, &mockFitter{model: constModel{arity: 1}}, &mockWriter{}, nil)

	r, err := svc.Run(context.Background(), Params{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, r.TestSize)
}

func TestRun_DatasetUnavailable(t *testing.T) {
	writer := &mockWriter{}
	svc := New(&mockLoader{err: errors.New("no such file")}, &mockFitter{}, writer, nil)

	_, err := svc.Run(context.Background(), Params{TestFraction: 0.3})
	require.ErrorIs(t, err, domain.ErrDatasetUnavailable)
	assert.Nil(t, writer.saved)
}

func TestRun_InvalidSplit(t *testing.T) {
	one, err := dataset.New([][]float64{{1}}, []int{0})
	require.NoError(t, err)
	svc := New(&mockLoader{ds: one}, &mockFitter{}, &mockWriter{}, nil)

	_, err = svc.Run(context.Background(), Params{TestFraction: 0.3})
	require.ErrorIs(t, err, domain.ErrInvalidSplit)
}

func TestRun_FitError(t *testing.T) {
	writer := &mockWriter{}
	svc := New(&mockLoader{ds: tinyDataset(t)}, &mockFitter{err: errors.New("boom")}, writer, nil)

	_, err := svc.Run(context.Background(), Params{TestFraction: 0.3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fit model")
	assert.Nil(t, writer.saved)
}

func TestRun_PersistFailure(t *testing.T) {
	svc := New(&mockLoader{ds: tinyDataset(t)},
		&mockFitter{model: constModel{arity: 1}},
		&mockWriter{err: errors.New("read-only filesystem")}, nil)

	_, err := svc.Run(context.Background(), Params{TestFraction: 0.3})
	require.ErrorIs(t, err, domain.ErrPersistFailure)
}

func TestRun_CanceledBeforePersist(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := New(&mockLoader{ds: tinyDataset(t)}, &mockFitter{model: constModel{arity: 1}}, &mockWriter{}, nil)

	_, err := svc.Run(ctx, Params{TestFraction: 0.3})
	require.ErrorIs(t, err, domain.ErrPersistFailure)
}

func TestRun_ReferenceDatasetEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.forest")
	store := artifact.NewStore(path)
	svc := New(dsrepo.New(""), forest.Trainer{Params: forest.Params{Seed: 42}}, store, nil)

	r, err := svc.Run(context.Background(), Params{TestFraction: 0.3, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 105, r.TrainSize)
	assert.Equal(t, 45, r.TestSize)
	assert.Equal(t, 4, r.Arity)
	assert.GreaterOrEqual(t, r.Accuracy, 0.90)

	m, err := store.Load(context.Background())
	require.NoError(t, err)
	labels, err := m.Predict([][]float64{{5.1, 3.5, 1.4, 0.2}})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, labels)
}

func TestRun_Deterministic(t *testing.T) {
	run := func() Report {
		dir := t.TempDir()
		svc := New(dsrepo.New(""), forest.Trainer{Params: forest.Params{Seed: 7}},
			artifact.NewStore(filepath.Join(dir, "m.forest")), nil)
		r, err := svc.Run(context.Background(), Params{TestFraction: 0.3, Seed: 7})
		require.NoError(t, err)
		return r
	}
	a, b := run(), run()
	assert.Equal(t, a.Accuracy, b.Accuracy)
	assert.Equal(t, a.TrainSize, b.TrainSize)
}
