// Package serving holds the process-wide model: the newest trained regressor
// and the preprocessor it was trained with, loaded once and shared read-only.
package serving

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/housing-predictor/internal/cache"
	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/model"
	"github.com/yungbote/housing-predictor/internal/observability"
	"github.com/yungbote/housing-predictor/internal/pipeline/preprocess"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

// Loaded is one consistent model + preprocessor pair.
type Loaded struct {
	Preprocessor *preprocess.Fitted
	Regressor    model.Regressor
	ModelPath    string
	// Version is the model file name without extension; it changes on every
	// training run.
	Version string
}

type Handle struct {
	dir     string
	log     *logger.Logger
	cache   cache.PredictionCache
	metrics *observability.Metrics

	group   singleflight.Group
	current atomic.Pointer[Loaded]
	loads   atomic.Int64
}

type Option func(*Handle)

func WithCache(c cache.PredictionCache) Option {
	return func(h *Handle) {
		if c != nil {
			h.cache = c
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handle) { h.metrics = m }
}

// NewHandle does no I/O; the model is read on first use.
func NewHandle(dir string, log *logger.Logger, opts ...Option) *Handle {
	if log == nil {
		log = logger.NewNop()
	}
	h := &Handle{dir: dir, log: log.With("service", "ModelHandle"), cache: cache.Nop{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handle) Loaded() bool { return h.current.Load() != nil }

func (h *Handle) Dir() string { return h.dir }

// Get returns the loaded pair, loading it on first call. Concurrent first
// callers share one load. A failed load is not cached, so the next call
// tries again (for example after training has written the artifacts).
func (h *Handle) Get(ctx context.Context) (*Loaded, error) {
	if l := h.current.Load(); l != nil {
		return l, nil
	}
	v, err, _ := h.group.Do("load", func() (any, error) {
		if l := h.current.Load(); l != nil {
			return l, nil
		}
		l, err := h.load(context.WithoutCancel(ctx))
		h.metrics.ObserveModelLoad(err)
		if err != nil {
			h.log.Warn("model load failed", "dir", h.dir, "error", err)
			return nil, err
		}
		h.current.Store(l)
		h.log.Info("model loaded", "model_path", l.ModelPath, "version", l.Version)
		return l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkgerrors.ErrUnavailable, err)
	}
	return v.(*Loaded), nil
}

func (h *Handle) load(ctx context.Context) (*Loaded, error) {
	h.loads.Add(1)
	path, err := model.LatestModelPath(h.dir)
	if err != nil {
		return nil, err
	}

	var (
		artifact *model.Artifact
		fitted   *preprocess.Fitted
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := model.LoadArtifact(path)
		artifact = a
		return err
	})
	g.Go(func() error {
		p, err := preprocess.Load(filepath.Join(h.dir, model.PreprocessorFile))
		fitted = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg, err := artifact.Regressor()
	if err != nil {
		return nil, err
	}
	if !slices.Equal(artifact.Features, fitted.FeatureNames()) {
		return nil, fmt.Errorf("model %s was trained on %v, preprocessor produces %v",
			filepath.Base(path), artifact.Features, fitted.FeatureNames())
	}
	return &Loaded{
		Preprocessor: fitted,
		Regressor:    reg,
		ModelPath:    path,
		Version:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}, nil
}

// Metadata reads model_metadata.json fresh on every call.
func (h *Handle) Metadata() (*model.Metadata, error) {
	return model.LoadMetadata(filepath.Join(h.dir, model.MetadataFile))
}

// Prediction is the value for one input row in units of $100k.
type Prediction struct {
	Value      float64 `json:"predicted_price"`
	Formatted  string  `json:"predicted_price_formatted"`
	Confidence string  `json:"confidence"`
}

func NewPrediction(v float64) Prediction {
	return Prediction{Value: v, Formatted: FormatPrice(v), Confidence: Confidence(v)}
}

// FormatPrice renders v ($100k units) as thousands of dollars, e.g. "$362.00k".
func FormatPrice(v float64) string { return fmt.Sprintf("$%.2fk", v*100) }

// Confidence buckets by predicted value; the training data is dense at low
// prices and sparse near the $500k cap.
func Confidence(v float64) string {
	switch {
	case v < 1.5:
		return "high"
	case v < 4.0:
		return "medium"
	default:
		return "low"
	}
}

// Predict returns one prediction per record, in order. Cached rows skip the
// pipeline; the rest are transformed and predicted as one batch.
func (h *Handle) Predict(ctx context.Context, records []housing.Record) ([]Prediction, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("predict: %w: no records", pkgerrors.ErrInvalidArgument)
	}
	l, err := h.Get(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	out := make([]Prediction, len(records))
	keys := make([]string, len(records))
	var misses []int
	for i, rec := range records {
		keys[i] = cache.Key(l.Version, rec)
		v, ok, err := h.cache.Get(ctx, keys[i])
		if err != nil {
			h.log.Warn("prediction cache read failed", "error", err)
		}
		h.metrics.IncCacheLookup(ok)
		if ok {
			out[i] = NewPrediction(v)
			continue
		}
		misses = append(misses, i)
	}

	if len(misses) > 0 {
		batch := make([]housing.Record, len(misses))
		for j, i := range misses {
			batch[j] = records[i]
		}
		x, err := l.Preprocessor.TransformRecords(batch)
		if err != nil {
			observability.ReportPipelineError(ctx, h.log, h.metrics, "predict", err)
			h.metrics.ObservePredictions("rejected", len(records), time.Since(start), nil)
			return nil, err
		}
		values, err := l.Regressor.Predict(x)
		if err != nil {
			h.metrics.ObservePredictions("error", len(records), time.Since(start), nil)
			return nil, fmt.Errorf("predict: %w", err)
		}
		for j, i := range misses {
			out[i] = NewPrediction(values[j])
			if err := h.cache.Set(ctx, keys[i], values[j]); err != nil {
				h.log.Warn("prediction cache write failed", "error", err)
			}
		}
	}

	values := make([]float64, len(out))
	for i, p := range out {
		values[i] = p.Value
	}
	h.metrics.ObservePredictions("ok", len(records), time.Since(start), values)
	return out, nil
}
