package training

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/housing/housingtest"
	"github.com/yungbote/housing-predictor/internal/model"
	"github.com/yungbote/housing-predictor/internal/pipeline/preprocess"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

func newTrainer(t *testing.T, dir string) *Trainer {
	t.Helper()
	tr, err := New(nil, DefaultConfig(dir))
	require.NoError(t, err)
	tr.now = func() time.Time { return time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC) }
	return tr
}

func TestTrainWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	tr := newTrainer(t, dir)

	res, err := tr.Train(context.Background(), housingtest.Frame(300, 5, true))
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "best_model_20240305T103000Z.json"), res.ModelPath)
	for _, p := range []string{res.ModelPath, res.PreprocessorPath, res.MetadataPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("artifact %s: %v", p, err)
		}
	}

	meta, err := model.LoadMetadata(res.MetadataPath)
	require.NoError(t, err)
	require.Equal(t, "2024-03-05", meta.Version())
	require.Equal(t, model.TypeRidge, meta.ModelType)
	require.Equal(t, 13, meta.NFeatures)
	require.Equal(t, 240, meta.TrainRows)
	require.Equal(t, 60, meta.TestRows)
	for _, k := range []string{"train_rmse", "train_mae", "train_r2", "test_rmse", "test_mae", "test_r2"} {
		if _, ok := meta.Metrics[k]; !ok {
			t.Fatalf("metric %s missing from %v", k, meta.Metrics)
		}
	}
	require.Greater(t, meta.Metrics["test_r2"], 0.9)
}

func TestTrainedArtifactsServeNewRows(t *testing.T) {
	dir := t.TempDir()
	res, err := newTrainer(t, dir).Train(context.Background(), housingtest.Frame(300, 5, true))
	require.NoError(t, err)

	fitted, err := preprocess.Load(res.PreprocessorPath)
	require.NoError(t, err)
	latest, err := model.LatestModelPath(dir)
	require.NoError(t, err)
	require.Equal(t, res.ModelPath, latest)
	art, err := model.LoadArtifact(latest)
	require.NoError(t, err)
	reg, err := art.Regressor()
	require.NoError(t, err)
	require.Equal(t, fitted.FeatureNames(), art.Features)

	x, err := fitted.TransformRecords([]housing.Record{housingtest.Sample()})
	require.NoError(t, err)
	pred, err := reg.Predict(x)
	require.NoError(t, err)
	// target is roughly 0.3 + 0.4*MedInc
	require.InDelta(t, 0.3+0.4*8.3, pred[0], 0.5)
}

func TestRunPropagatesSourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newTrainer(t, t.TempDir()).Run(context.Background(), SourceFunc(func(context.Context) (*housing.Frame, error) {
		return nil, boom
	}))
	require.ErrorIs(t, err, boom)
}

func TestTrainWithoutTarget(t *testing.T) {
	_, err := newTrainer(t, t.TempDir()).Train(context.Background(), housingtest.Frame(50, 5, false))
	require.ErrorIs(t, err, pkgerrors.ErrConfiguration)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(nil, Config{})
	require.ErrorIs(t, err, pkgerrors.ErrConfiguration)

	cfg := DefaultConfig(t.TempDir())
	cfg.RidgeAlpha = -1
	_, err = New(nil, cfg)
	require.ErrorIs(t, err, pkgerrors.ErrConfiguration)
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	body := "MedInc,HouseAge,AveRooms,AveBedrms,Population,AveOccup,Latitude,Longitude,MedHouseVal\n" +
		"8.3252,41,6.984127,1.02381,322,2.555556,37.88,-122.23,4.526\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	f, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
}

func TestCSVSourceDropsUnknownColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	body := "RowId,MedInc,HouseAge,AveRooms,AveBedrms,Population,AveOccup,Latitude,Longitude,MedHouseVal\n" +
		"1,8.3252,41,6.984127,1.02381,322,2.555556,37.88,-122.23,4.526\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	f, err := CSVSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.False(t, f.Has("RowId"))
	require.Equal(t, append(housing.RawColumns(), housing.Target), f.Names())
}
