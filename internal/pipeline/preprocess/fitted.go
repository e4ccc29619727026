package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/pipeline/features"
	"github.com/yungbote/housing-predictor/internal/pipeline/outliers"
	"github.com/yungbote/housing-predictor/internal/pipeline/scaling"
)

// Fitted is the frozen pipeline. Its state is never written after
// construction, so one value can serve concurrent Transform calls.
type Fitted struct {
	target string
	schema housing.Schema
	capper *outliers.Capper
	scaler *scaling.RobustScaler
}

func (p *Fitted) ready() bool {
	return p != nil && p.capper.Fitted() && p.scaler.Fitted() && len(p.schema) > 0
}

// Transform runs new rows through the training-time path: engineer, clip to
// the stored bounds, drop the target if present, order by the fitted schema
// and scale. Output rows align with input rows.
func (p *Fitted) Transform(f *housing.Frame) (*mat.Dense, error) {
	if !p.ready() {
		return nil, pkgerrors.NotFitted("preprocessor")
	}
	engineered, err := features.Augment(f)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	if err := checkFinite(engineered.Drop(p.target)); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	capped, err := p.capper.Apply(engineered)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	x := capped.Drop(p.target)

	names := p.schema.Names()
	if missing := x.Missing(names); len(missing) > 0 {
		return nil, &pkgerrors.SchemaError{Op: "transform", Missing: missing}
	}
	ordered, err := x.Select(names)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	out, err := p.scaler.Transform(ordered)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return out, nil
}

// TransformRecords is Transform over keyed records.
func (p *Fitted) TransformRecords(records []housing.Record) (*mat.Dense, error) {
	if !p.ready() {
		return nil, pkgerrors.NotFitted("preprocessor")
	}
	f, err := housing.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return p.Transform(f)
}

func (p *Fitted) Target() string { return p.target }

// Schema returns the authoritative feature list in output column order.
func (p *Fitted) Schema() housing.Schema { return append(housing.Schema(nil), p.schema...) }

func (p *Fitted) FeatureNames() []string { return p.schema.Names() }

func (p *Fitted) Bounds() map[string]outliers.Bounds { return p.capper.Bounds() }

func (p *Fitted) ScalerStats() []scaling.ColumnStats { return p.scaler.Stats() }

// InverseScale maps a scaled matrix back to capped feature units.
func (p *Fitted) InverseScale(m mat.Matrix) (*mat.Dense, error) {
	if !p.ready() {
		return nil, pkgerrors.NotFitted("preprocessor")
	}
	return p.scaler.InverseTransform(m)
}
