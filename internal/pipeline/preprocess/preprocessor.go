// Package preprocess composes feature engineering, outlier capping and robust
// scaling into one fit/transform contract shared by training and serving.
//
// A Preprocessor only carries options. FitTransform is the single way to
// obtain a Fitted value, and only a Fitted value can transform new data, so
// serving code that holds a *Fitted cannot transform before fitting.
package preprocess

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/pipeline/features"
	"github.com/yungbote/housing-predictor/internal/pipeline/outliers"
	"github.com/yungbote/housing-predictor/internal/pipeline/scaling"
	"github.com/yungbote/housing-predictor/internal/pipeline/stats"
)

const (
	DefaultTestRatio = 0.2
	DefaultSeed      = 42
)

type Options struct {
	Target          string
	CapColumns      []string
	LowerPercentile float64
	UpperPercentile float64
}

func DefaultOptions() Options {
	return Options{
		Target:          housing.Target,
		CapColumns:      housing.CappedColumns(),
		LowerPercentile: outliers.DefaultLowerPercentile,
		UpperPercentile: outliers.DefaultUpperPercentile,
	}
}

// Preprocessor is the unfitted pipeline.
type Preprocessor struct {
	opts Options
}

func New(opts Options) (*Preprocessor, error) {
	if opts.Target == "" {
		return nil, pkgerrors.Configuration("target", "name is empty")
	}
	for _, raw := range housing.RawColumns() {
		if opts.Target == raw {
			return nil, pkgerrors.Configuration("target", "%s is an input feature", raw)
		}
	}
	if _, err := outliers.New(opts.LowerPercentile, opts.UpperPercentile); err != nil {
		return nil, err
	}
	opts.CapColumns = append([]string(nil), opts.CapColumns...)
	return &Preprocessor{opts: opts}, nil
}

// Split is the training-time output of FitTransform. Rows of XTrain/YTrain
// follow TrainIndex, rows of XTest/YTest follow TestIndex; both index the
// input frame.
type Split struct {
	XTrain     *mat.Dense
	XTest      *mat.Dense
	YTrain     []float64
	YTest      []float64
	TrainIndex []int
	TestIndex  []int
}

// FitTransform engineers, caps and splits the training frame, fits the scaler
// on the train partition only and returns the frozen pipeline with both scaled
// partitions. testRatio is the share of rows held out; the same seed on the
// same frame always yields the same partition.
func (p *Preprocessor) FitTransform(f *housing.Frame, testRatio float64, seed uint64) (*Fitted, *Split, error) {
	if !(testRatio > 0 && testRatio < 1) {
		return nil, nil, pkgerrors.Configuration("test ratio", "must be in (0, 1), got %v", testRatio)
	}
	if !f.Has(p.opts.Target) {
		return nil, nil, pkgerrors.Configuration("target", "column %s is absent from the training frame", p.opts.Target)
	}

	if extra := p.unknownColumns(f); len(extra) > 0 {
		return nil, nil, &pkgerrors.SchemaError{Op: "fit", Extra: extra}
	}

	engineered, err := features.Augment(f)
	if err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}
	if err := checkFinite(engineered); err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}

	capper, err := outliers.New(p.opts.LowerPercentile, p.opts.UpperPercentile)
	if err != nil {
		return nil, nil, err
	}
	if err := capper.Fit(engineered, p.opts.CapColumns); err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}
	capped, err := capper.Apply(engineered)
	if err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}

	y, _ := capped.Column(p.opts.Target)
	x := capped.Drop(p.opts.Target)
	schema := housing.SchemaFor(x.Names())

	trainIdx, testIdx, err := partition(x.Len(), testRatio, seed)
	if err != nil {
		return nil, nil, err
	}
	xTrain, xTest := x.Take(trainIdx), x.Take(testIdx)

	scaler := scaling.NewRobustScaler()
	if err := scaler.Fit(xTrain); err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}
	trainScaled, err := scaler.Transform(xTrain)
	if err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}
	testScaled, err := scaler.Transform(xTest)
	if err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}

	fitted := &Fitted{
		target: p.opts.Target,
		schema: schema,
		capper: capper,
		scaler: scaler,
	}
	return fitted, &Split{
		XTrain:     trainScaled,
		XTest:      testScaled,
		YTrain:     pick(y, trainIdx),
		YTest:      pick(y, testIdx),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
	}, nil
}

// partition shuffles 0..n-1 with a seeded PCG source and takes the first
// ceil(n*testRatio) indices as the test set.
func partition(n int, testRatio float64, seed uint64) (train, test []int, err error) {
	nTest := int(math.Ceil(testRatio * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, nil, pkgerrors.Configuration("test ratio", "%v of %d rows leaves an empty partition", testRatio, n)
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = values[r]
	}
	return out
}

func checkFinite(f *housing.Frame) error {
	var errs pkgerrors.ComputationErrors
	for _, name := range f.Names() {
		values, _ := f.Column(name)
		if bad := stats.NonFinite(values); len(bad) > 0 {
			errs = append(errs, &pkgerrors.ComputationError{Column: name, Rows: bad})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// unknownColumns lists columns that are neither raw features nor the target.
// Fitting on them would record features that serving cannot supply.
func (p *Preprocessor) unknownColumns(f *housing.Frame) []string {
	known := make(map[string]struct{}, len(housing.RawColumns())+1)
	for _, n := range housing.RawColumns() {
		known[n] = struct{}{}
	}
	known[p.opts.Target] = struct{}{}
	var extra []string
	for _, n := range f.Names() {
		if _, ok := known[n]; !ok {
			extra = append(extra, n)
		}
	}
	return extra
}
