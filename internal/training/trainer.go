// Package training fits the preprocessing pipeline and a baseline regressor
// on a labelled frame and writes the artifacts the predictor serves.
package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/model"
	"github.com/yungbote/housing-predictor/internal/pipeline/preprocess"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

const DefaultRidgeAlpha = 1.0

// Source yields the labelled training frame.
type Source interface {
	Load(ctx context.Context) (*housing.Frame, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*housing.Frame, error)

func (f SourceFunc) Load(ctx context.Context) (*housing.Frame, error) { return f(ctx) }

type Config struct {
	OutputDir  string
	ModelName  string
	TestRatio  float64
	Seed       uint64
	RidgeAlpha float64
	Pipeline   preprocess.Options
}

func DefaultConfig(outputDir string) Config {
	return Config{
		OutputDir:  outputDir,
		ModelName:  "ridge_baseline",
		TestRatio:  preprocess.DefaultTestRatio,
		Seed:       preprocess.DefaultSeed,
		RidgeAlpha: DefaultRidgeAlpha,
		Pipeline:   preprocess.DefaultOptions(),
	}
}

// Result lists what a run produced.
type Result struct {
	Metadata         model.Metadata
	ModelPath        string
	PreprocessorPath string
	MetadataPath     string
}

type Trainer struct {
	log *logger.Logger
	cfg Config
	now func() time.Time
}

func New(log *logger.Logger, cfg Config) (*Trainer, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.OutputDir == "" {
		return nil, pkgerrors.Configuration("output dir", "is empty")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "ridge_baseline"
	}
	if cfg.RidgeAlpha < 0 {
		return nil, pkgerrors.Configuration("ridge alpha", "must be >= 0, got %v", cfg.RidgeAlpha)
	}
	return &Trainer{log: log.With("component", "Trainer"), cfg: cfg, now: time.Now}, nil
}

// Run loads the frame from src and trains on it.
func (t *Trainer) Run(ctx context.Context, src Source) (*Result, error) {
	frame, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load training data: %w", err)
	}
	t.log.Info("training data loaded", "rows", frame.Len(), "columns", frame.Width())
	return t.Train(ctx, frame)
}

// Train fits the pipeline and the regressor on frame, evaluates both
// partitions and persists the artifacts.
func (t *Trainer) Train(ctx context.Context, frame *housing.Frame) (*Result, error) {
	pre, err := preprocess.New(t.cfg.Pipeline)
	if err != nil {
		return nil, err
	}

	t.log.Info("fitting preprocessor",
		"test_ratio", t.cfg.TestRatio,
		"seed", t.cfg.Seed,
		"cap_columns", t.cfg.Pipeline.CapColumns,
	)
	fitted, split, err := pre.FitTransform(frame, t.cfg.TestRatio, t.cfg.Seed)
	if err != nil {
		return nil, err
	}
	trainRows, nFeatures := split.XTrain.Dims()
	testRows, _ := split.XTest.Dims()
	t.log.Info("preprocessing done",
		"train_rows", trainRows,
		"test_rows", testRows,
		"n_features", nFeatures,
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ridge, err := model.FitRidge(split.XTrain, split.YTrain, t.cfg.RidgeAlpha)
	if err != nil {
		return nil, fmt.Errorf("fit regressor: %w", err)
	}

	metrics, err := score(ridge, split)
	if err != nil {
		return nil, err
	}
	t.log.Info("regressor evaluated",
		"test_rmse", metrics["test_rmse"],
		"test_r2", metrics["test_r2"],
	)

	trainedAt := t.now().UTC()
	meta := model.Metadata{
		ModelName:    t.cfg.ModelName,
		ModelType:    model.TypeRidge,
		TrainingDate: trainedAt,
		Metrics:      metrics,
		NFeatures:    nFeatures,
		Features:     fitted.FeatureNames(),
		TrainRows:    trainRows,
		TestRows:     testRows,
	}
	res, err := t.persist(ctx, fitted, ridge, meta)
	if err != nil {
		return nil, err
	}
	t.log.Info("training complete", "model_path", res.ModelPath)
	return res, nil
}

// score evaluates the regressor on both partitions. Keys follow the
// <partition>_<metric> naming used in model_metadata.json.
func score(m model.Regressor, split *preprocess.Split) (map[string]float64, error) {
	out := make(map[string]float64, 6)
	parts := []struct {
		name string
		x    mat.Matrix
		y    []float64
	}{
		{"train", split.XTrain, split.YTrain},
		{"test", split.XTest, split.YTest},
	}
	for _, p := range parts {
		pred, err := m.Predict(p.x)
		if err != nil {
			return nil, fmt.Errorf("predict %s partition: %w", p.name, err)
		}
		got, err := model.Evaluate(p.y, pred)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s partition: %w", p.name, err)
		}
		out[p.name+"_rmse"] = got.RMSE
		out[p.name+"_mae"] = got.MAE
		out[p.name+"_r2"] = got.R2
	}
	return out, nil
}

// persist writes the three artifacts concurrently. Metadata is written last
// so a reader that sees it can also find the model and preprocessor.
func (t *Trainer) persist(ctx context.Context, fitted *preprocess.Fitted, ridge *model.Ridge, meta model.Metadata) (*Result, error) {
	if err := os.MkdirAll(t.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	res := &Result{
		Metadata:         meta,
		ModelPath:        filepath.Join(t.cfg.OutputDir, model.ModelFileName(meta.TrainingDate)),
		PreprocessorPath: filepath.Join(t.cfg.OutputDir, model.PreprocessorFile),
		MetadataPath:     filepath.Join(t.cfg.OutputDir, model.MetadataFile),
	}
	artifact := model.Artifact{
		Name:     meta.ModelName,
		Type:     model.TypeRidge,
		Features: meta.Features,
		Ridge:    ridge,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := preprocess.Save(res.PreprocessorPath, fitted); err != nil {
			return fmt.Errorf("save preprocessor: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := model.SaveJSON(res.ModelPath, &artifact); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := model.SaveJSON(res.MetadataPath, &meta); err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	return res, nil
}
