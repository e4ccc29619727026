// Package scaling centers and scales feature columns with statistics that
// are robust to outliers.
package scaling

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/pipeline/stats"
)

// ColumnStats are the fitted statistics of one column.
type ColumnStats struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	IQR    float64 `json:"iqr"`
}

// Scale is the divisor applied to the column. Zero-IQR columns divide by 1,
// so their output is the value minus the median.
func (s ColumnStats) Scale() float64 {
	if s.IQR == 0 {
		return 1
	}
	return s.IQR
}

// RobustScaler maps each value to (value - median) / IQR using statistics
// fit once on a reference frame.
type RobustScaler struct {
	fitted bool
	stats  []ColumnStats
}

func NewRobustScaler() *RobustScaler { return &RobustScaler{} }

// RestoreRobustScaler rebuilds a fitted scaler from persisted statistics.
func RestoreRobustScaler(cols []ColumnStats) (*RobustScaler, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("scaling: no column statistics to restore")
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if seen[c.Name] {
			return nil, fmt.Errorf("scaling: duplicate column %s", c.Name)
		}
		if c.IQR < 0 {
			return nil, fmt.Errorf("scaling: column %s has negative iqr %v", c.Name, c.IQR)
		}
		seen[c.Name] = true
	}
	return &RobustScaler{fitted: true, stats: append([]ColumnStats(nil), cols...)}, nil
}

// Fit computes median and IQR for every column of f in f's column order.
// A scaler can be fit once; discard it to fit again.
func (s *RobustScaler) Fit(f *housing.Frame) error {
	if s.fitted {
		return pkgerrors.AlreadyFitted("robust scaler")
	}
	if f.Len() == 0 || f.Width() == 0 {
		return pkgerrors.Configuration("scaler input", "need at least one row and one column, got %dx%d", f.Len(), f.Width())
	}
	out := make([]ColumnStats, 0, f.Width())
	for _, name := range f.Names() {
		values, _ := f.Column(name)
		if bad := stats.NonFinite(values); len(bad) > 0 {
			return &pkgerrors.ComputationError{Column: name, Rows: bad}
		}
		q := stats.Quantiles(values, 0.25, 0.5, 0.75)
		out = append(out, ColumnStats{Name: name, Median: q[1], IQR: q[2] - q[0]})
	}
	s.stats = out
	s.fitted = true
	return nil
}

// Transform scales f into a rows x columns matrix. f must hold exactly the
// fit-time columns in fit-time order.
func (s *RobustScaler) Transform(f *housing.Frame) (*mat.Dense, error) {
	if !s.Fitted() {
		return nil, pkgerrors.NotFitted("robust scaler")
	}
	if err := s.checkColumns(f.Names()); err != nil {
		return nil, err
	}
	if f.Len() == 0 {
		return nil, fmt.Errorf("scaling: %w: empty frame", pkgerrors.ErrInvalidArgument)
	}
	out := mat.NewDense(f.Len(), len(s.stats), nil)
	for j, st := range s.stats {
		values, _ := f.Column(st.Name)
		scale := st.Scale()
		for i, v := range values {
			out.Set(i, j, (v-st.Median)/scale)
		}
	}
	return out, nil
}

// InverseTransform maps scaled values back to the original units.
func (s *RobustScaler) InverseTransform(m mat.Matrix) (*mat.Dense, error) {
	if !s.Fitted() {
		return nil, pkgerrors.NotFitted("robust scaler")
	}
	r, c := m.Dims()
	if c != len(s.stats) {
		return nil, fmt.Errorf("scaling: %w: matrix has %d columns, scaler has %d", pkgerrors.ErrInvalidArgument, c, len(s.stats))
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return v*s.stats[j].Scale() + s.stats[j].Median
	}, m)
	return out, nil
}

func (s *RobustScaler) checkColumns(names []string) error {
	want := s.Columns()
	var missing, extra []string
	for _, n := range want {
		if !contains(names, n) {
			missing = append(missing, n)
		}
	}
	for _, n := range names {
		if !contains(want, n) {
			extra = append(extra, n)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return &pkgerrors.SchemaError{Op: "robust scaler", Missing: missing, Extra: extra}
	}
	for i := range want {
		if names[i] != want[i] {
			return &pkgerrors.SchemaError{Op: "robust scaler", Misordered: true}
		}
	}
	return nil
}

func contains(names []string, n string) bool {
	for _, x := range names {
		if x == n {
			return true
		}
	}
	return false
}

func (s *RobustScaler) Fitted() bool { return s != nil && s.fitted }

func (s *RobustScaler) Columns() []string {
	out := make([]string, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, st.Name)
	}
	return out
}

// Stats returns a copy of the fitted statistics in column order.
func (s *RobustScaler) Stats() []ColumnStats { return append([]ColumnStats(nil), s.stats...) }
