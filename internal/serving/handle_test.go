package serving

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/housing/housingtest"
	"github.com/yungbote/housing-predictor/internal/observability"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/training"
)

func train(t *testing.T, dir string) *training.Result {
	t.Helper()
	tr, err := training.New(nil, training.DefaultConfig(dir))
	require.NoError(t, err)
	res, err := tr.Train(context.Background(), housingtest.Frame(300, 5, true))
	require.NoError(t, err)
	return res
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]float64
	sets int
}

func (c *mapCache) Get(_ context.Context, key string) (float64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, v float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
	c.sets++
	return nil
}

func (c *mapCache) Close() error { return nil }

func TestGetRetriesAfterMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	h := NewHandle(dir, nil)

	_, err := h.Get(context.Background())
	require.ErrorIs(t, err, pkgerrors.ErrUnavailable)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
	require.False(t, h.Loaded())

	res := train(t, dir)
	l, err := h.Get(context.Background())
	require.NoError(t, err)
	require.True(t, h.Loaded())
	require.Equal(t, res.ModelPath, l.ModelPath)
	require.Equal(t, "best_model_"+res.Metadata.TrainingDate.Format("20060102T150405Z"), l.Version)
}

func TestGetLoadsOnceUnderConcurrency(t *testing.T) {
	dir := t.TempDir()
	train(t, dir)
	h := NewHandle(dir, nil)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			_, err := h.Get(context.Background())
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, h.loads.Load())
}

func TestMissingPreprocessor(t *testing.T) {
	dir := t.TempDir()
	res := train(t, dir)
	require.NoError(t, os.Remove(res.PreprocessorPath))

	_, err := NewHandle(dir, nil).Get(context.Background())
	require.ErrorIs(t, err, pkgerrors.ErrUnavailable)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPredictMatchesPipeline(t *testing.T) {
	dir := t.TempDir()
	train(t, dir)
	h := NewHandle(dir, nil, WithMetrics(observability.New()))

	got, err := h.Predict(context.Background(), []housing.Record{housingtest.Sample()})
	require.NoError(t, err)
	require.Len(t, got, 1)

	l, err := h.Get(context.Background())
	require.NoError(t, err)
	x, err := l.Preprocessor.TransformRecords([]housing.Record{housingtest.Sample()})
	require.NoError(t, err)
	want, err := l.Regressor.Predict(x)
	require.NoError(t, err)

	require.Equal(t, want[0], got[0].Value)
	require.Equal(t, FormatPrice(want[0]), got[0].Formatted)
	require.Equal(t, Confidence(want[0]), got[0].Confidence)
}

func TestPredictBatchKeepsOrderAndUsesCache(t *testing.T) {
	dir := t.TempDir()
	train(t, dir)
	c := &mapCache{data: map[string]float64{}}
	h := NewHandle(dir, nil, WithCache(c))

	records := housingtest.Records(5, 99, false)
	first, err := h.Predict(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, 5, c.sets)

	for i, rec := range records {
		single, err := h.Predict(context.Background(), []housing.Record{rec})
		require.NoError(t, err)
		require.Equal(t, first[i], single[0])
	}
	require.Equal(t, 5, c.sets, "second pass must be served from cache")
}

func TestPredictRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	train(t, dir)
	h := NewHandle(dir, nil, WithMetrics(observability.New()))

	_, err := h.Predict(context.Background(), nil)
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)

	rec := housingtest.Sample()
	delete(rec, housing.Longitude)
	_, err = h.Predict(context.Background(), []housing.Record{rec})
	require.ErrorIs(t, err, pkgerrors.ErrSchema)

	rec = housingtest.Sample()
	rec[housing.AveOccup] = 0
	_, err = h.Predict(context.Background(), []housing.Record{rec})
	require.ErrorIs(t, err, pkgerrors.ErrComputation)
}

func TestFormatting(t *testing.T) {
	require.Equal(t, "$362.00k", FormatPrice(3.62))
	require.Equal(t, "$45.26k", FormatPrice(0.4526))
	cases := map[float64]string{0.5: "high", 1.49: "high", 1.5: "medium", 3.99: "medium", 4.0: "low", 5.1: "low"}
	for v, want := range cases {
		if got := Confidence(v); got != want {
			t.Fatalf("Confidence(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestMetadata(t *testing.T) {
	dir := t.TempDir()
	h := NewHandle(dir, nil)
	_, err := h.Metadata()
	require.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	res := train(t, dir)
	meta, err := h.Metadata()
	require.NoError(t, err)
	require.Equal(t, res.Metadata.Features, meta.Features)
}
