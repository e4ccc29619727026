package model

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

func TestFitRidgeRecoversLinearFunction(t *testing.T) {
	rows := 50
	x := mat.NewDense(rows, 2, nil)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		a, b := float64(i)/10, float64((i*7)%11)
		x.Set(i, 0, a)
		x.Set(i, 1, b)
		y[i] = 1.5 + 2*a - 0.5*b
	}
	m, err := FitRidge(x, y, 0)
	require.NoError(t, err)
	require.InDelta(t, 1.5, m.Intercept, 1e-8)
	require.InDeltaSlice(t, []float64{2, -0.5}, m.Coef, 1e-8)

	pred, err := m.Predict(x)
	require.NoError(t, err)
	metrics, err := Evaluate(y, pred)
	require.NoError(t, err)
	require.InDelta(t, 0, metrics.RMSE, 1e-8)
	require.InDelta(t, 1, metrics.R2, 1e-8)
}

func TestRidgeShrinksWithAlpha(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := []float64{2, 4, 6, 8}
	loose, err := FitRidge(x, y, 0)
	require.NoError(t, err)
	tight, err := FitRidge(x, y, 100)
	require.NoError(t, err)
	require.Less(t, tight.Coef[0], loose.Coef[0])
}

func TestFitRidgeInputErrors(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})
	_, err := FitRidge(x, []float64{1}, 1)
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
	_, err = FitRidge(x, []float64{1, 2}, -1)
	require.ErrorIs(t, err, pkgerrors.ErrConfiguration)

	m := &Ridge{Coef: []float64{1, 2}}
	_, err = m.Predict(x)
	require.ErrorIs(t, err, pkgerrors.ErrInvalidArgument)
}

func TestEvaluate(t *testing.T) {
	got, err := Evaluate([]float64{1, 2, 3}, []float64{2, 2, 2})
	require.NoError(t, err)
	require.InDelta(t, 0.816496, got.RMSE, 1e-6)
	require.InDelta(t, 2.0/3, got.MAE, 1e-12)
	_, err = Evaluate(nil, nil)
	require.Error(t, err)
}

func TestArtifactRoundTripAndLatest(t *testing.T) {
	dir := t.TempDir()
	_, err := LatestModelPath(dir)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	older := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	newer := older.Add(time.Hour)
	for _, ts := range []time.Time{newer, older} {
		a := Artifact{Name: "ridge", Type: TypeRidge, Features: []string{"a"}, Ridge: &Ridge{Intercept: float64(ts.Hour()), Coef: []float64{1}}}
		require.NoError(t, SaveJSON(filepath.Join(dir, ModelFileName(ts)), a))
	}
	path, err := LatestModelPath(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "best_model_20240102T040405Z.json"), path)

	a, err := LoadArtifact(path)
	require.NoError(t, err)
	reg, err := a.Regressor()
	require.NoError(t, err)
	require.Equal(t, 1, reg.NumFeatures())

	_, err = LoadMetadata(filepath.Join(dir, MetadataFile))
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)

	bad := Artifact{Name: "x", Type: "forest"}
	_, err = bad.Regressor()
	require.Error(t, err)
}

func TestMetadataVersion(t *testing.T) {
	m := Metadata{TrainingDate: time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)}
	require.Equal(t, "2025-06-01", m.Version())
	require.Equal(t, "", Metadata{}.Version())
}
