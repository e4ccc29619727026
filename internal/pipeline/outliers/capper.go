// Package outliers clips columns to percentile bounds learned from training data.
package outliers

import (
	"fmt"
	"math"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/pipeline/stats"
)

const (
	DefaultLowerPercentile = 1.0
	DefaultUpperPercentile = 99.0
)

// Bounds is the inclusive clipping interval for one column.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func (b Bounds) Clip(v float64) float64 {
	return math.Min(math.Max(v, b.Lower), b.Upper)
}

// Capper stores per-column bounds once and applies them to any later frame.
type Capper struct {
	lowerPct float64
	upperPct float64

	fitted  bool
	columns []string
	bounds  map[string]Bounds
}

func New(lowerPct, upperPct float64) (*Capper, error) {
	if lowerPct < 0 || upperPct > 100 || lowerPct >= upperPct {
		return nil, pkgerrors.Configuration("capping percentiles", "need 0 <= lower < upper <= 100, got %v/%v", lowerPct, upperPct)
	}
	return &Capper{lowerPct: lowerPct, upperPct: upperPct}, nil
}

func NewDefault() *Capper {
	return &Capper{lowerPct: DefaultLowerPercentile, upperPct: DefaultUpperPercentile}
}

// Restore rebuilds a fitted capper from persisted bounds. Columns keep the given order.
func Restore(columns []string, bounds map[string]Bounds) (*Capper, error) {
	c := NewDefault()
	c.bounds = make(map[string]Bounds, len(columns))
	for _, col := range columns {
		b, ok := bounds[col]
		if !ok {
			return nil, fmt.Errorf("outliers: no bounds for column %s", col)
		}
		if b.Lower > b.Upper {
			return nil, fmt.Errorf("outliers: column %s has lower %v above upper %v", col, b.Lower, b.Upper)
		}
		c.columns = append(c.columns, col)
		c.bounds[col] = b
	}
	c.fitted = true
	return c, nil
}

// Fit computes bounds for each named column present in f. Absent columns are
// skipped. A capper can be fit once.
func (c *Capper) Fit(f *housing.Frame, columns []string) error {
	if c.fitted {
		return pkgerrors.AlreadyFitted("outlier capper")
	}
	bounds := make(map[string]Bounds, len(columns))
	var fitted []string
	for _, col := range columns {
		values, ok := f.Column(col)
		if !ok {
			continue
		}
		if _, dup := bounds[col]; dup {
			continue
		}
		if len(values) == 0 {
			return pkgerrors.Configuration("training frame", "no rows to fit bounds for %s", col)
		}
		if bad := stats.NonFinite(values); len(bad) > 0 {
			return &pkgerrors.ComputationError{Column: col, Rows: bad}
		}
		q := stats.Quantiles(values, c.lowerPct/100, c.upperPct/100)
		bounds[col] = Bounds{Lower: q[0], Upper: q[1]}
		fitted = append(fitted, col)
	}
	c.columns = fitted
	c.bounds = bounds
	c.fitted = true
	return nil
}

// Apply returns a copy of f with every bounded column clipped. Columns without
// bounds pass through; bounded columns missing from f are ignored.
func (c *Capper) Apply(f *housing.Frame) (*housing.Frame, error) {
	if !c.Fitted() {
		return nil, pkgerrors.NotFitted("outlier capper")
	}
	out := f.Clone()
	if err := c.apply(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyInPlace clips f directly, for callers that own the frame.
func (c *Capper) ApplyInPlace(f *housing.Frame) error {
	if !c.Fitted() {
		return pkgerrors.NotFitted("outlier capper")
	}
	return c.apply(f)
}

func (c *Capper) apply(f *housing.Frame) error {
	for _, col := range c.columns {
		values, ok := f.Column(col)
		if !ok {
			continue
		}
		b := c.bounds[col]
		clipped := make([]float64, len(values))
		for i, v := range values {
			clipped[i] = b.Clip(v)
		}
		if err := f.Set(col, clipped); err != nil {
			return err
		}
	}
	return nil
}

func (c *Capper) Fitted() bool { return c != nil && c.fitted }

// Columns lists the bounded columns in fit order.
func (c *Capper) Columns() []string { return append([]string(nil), c.columns...) }

// Bounds returns a copy of the fitted bounds.
func (c *Capper) Bounds() map[string]Bounds {
	out := make(map[string]Bounds, len(c.bounds))
	for k, v := range c.bounds {
		out[k] = v
	}
	return out
}
