package scaling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/pipeline/stats"
)

func frame(t *testing.T, names []string, rows [][]float64) *housing.Frame {
	t.Helper()
	f, err := housing.FromRows(names, rows)
	require.NoError(t, err)
	return f
}

func TestFitTransform(t *testing.T) {
	f := frame(t, []string{"a", "b"}, [][]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}, {5, 50}})
	s := NewRobustScaler()
	require.NoError(t, s.Fit(f))

	st := s.Stats()
	require.Equal(t, "a", st[0].Name)
	require.InDelta(t, 3, st[0].Median, 1e-12)
	require.InDelta(t, 2, st[0].IQR, 1e-12)
	require.InDelta(t, 20, st[1].IQR, 1e-12)

	out, err := s.Transform(f)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{-1, -0.5, 0, 0.5, 1}, mat.Col(nil, 0, out), 1e-12)
	require.InDeltaSlice(t, []float64{-1, -0.5, 0, 0.5, 1}, mat.Col(nil, 1, out), 1e-12)
	require.InDelta(t, 0, stats.Median(mat.Col(nil, 0, out)), 1e-12)
}

func TestZeroIQRDividesByOne(t *testing.T) {
	f := frame(t, []string{"c"}, [][]float64{{5}, {5}, {5}, {5}, {7}})
	s := NewRobustScaler()
	require.NoError(t, s.Fit(f))
	require.Equal(t, 0.0, s.Stats()[0].IQR)

	out, err := s.Transform(f)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 0, 2}, mat.Col(nil, 0, out))
}

func TestInverseTransform(t *testing.T) {
	f := frame(t, []string{"a", "b"}, [][]float64{{1.5, -3}, {2.25, 8}, {9, 0.1}, {4, 4}})
	s := NewRobustScaler()
	require.NoError(t, s.Fit(f))
	out, err := s.Transform(f)
	require.NoError(t, err)
	back, err := s.InverseTransform(out)
	require.NoError(t, err)
	for j, name := range f.Names() {
		col, _ := f.Column(name)
		require.InDeltaSlice(t, col, mat.Col(nil, j, back), 1e-9)
	}
}

func TestTransformSchemaMismatch(t *testing.T) {
	s := NewRobustScaler()
	require.NoError(t, s.Fit(frame(t, []string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})))

	_, err := s.Transform(frame(t, []string{"a", "c"}, [][]float64{{1, 2}}))
	var se *pkgerrors.SchemaError
	require.True(t, errors.As(err, &se), "got %v", err)
	require.Equal(t, []string{"b"}, se.Missing)
	require.Equal(t, []string{"c"}, se.Extra)

	_, err = s.Transform(frame(t, []string{"b", "a"}, [][]float64{{1, 2}}))
	require.True(t, errors.As(err, &se))
	require.True(t, se.Misordered)
}

func TestStateErrors(t *testing.T) {
	s := NewRobustScaler()
	_, err := s.Transform(frame(t, []string{"a"}, [][]float64{{1}}))
	require.ErrorIs(t, err, pkgerrors.ErrNotFitted)

	require.NoError(t, s.Fit(frame(t, []string{"a"}, [][]float64{{1}, {2}})))
	require.ErrorIs(t, s.Fit(frame(t, []string{"a"}, [][]float64{{1}})), pkgerrors.ErrAlreadyFitted)
}

func TestRestoreRobustScaler(t *testing.T) {
	s, err := RestoreRobustScaler([]ColumnStats{{Name: "a", Median: 1, IQR: 2}})
	require.NoError(t, err)
	out, err := s.Transform(frame(t, []string{"a"}, [][]float64{{5}}))
	require.NoError(t, err)
	require.Equal(t, 2.0, out.At(0, 0))

	_, err = RestoreRobustScaler([]ColumnStats{{Name: "a"}, {Name: "a"}})
	require.Error(t, err)
}
