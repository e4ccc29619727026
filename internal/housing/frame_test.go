package housing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

func TestFromRecordsCanonicalOrder(t *testing.T) {
	rec := Record{Longitude: -122, Target: 2, MedInc: 3, Latitude: 37, HouseAge: 10,
		AveRooms: 5, AveBedrms: 1, Population: 100, AveOccup: 2, "Zeta": 1, "Alpha": 0}
	f, err := FromRecords([]Record{rec})
	require.NoError(t, err)
	want := append(RawColumns(), Target, "Alpha", "Zeta")
	require.Equal(t, want, f.Names())
}

func TestFromRecordsMissingKey(t *testing.T) {
	a := Record{MedInc: 1, HouseAge: 2}
	b := Record{MedInc: 1}
	_, err := FromRecords([]Record{a, b})
	if !errors.Is(err, pkgerrors.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	var se *pkgerrors.SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, []string{HouseAge}, se.Missing)
}

func TestFromRecordsExtraKey(t *testing.T) {
	a := Record{MedInc: 1}
	b := Record{MedInc: 1, "Other": 2}
	_, err := FromRecords([]Record{a, b})
	var se *pkgerrors.SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, []string{"Other"}, se.Extra)
}

func TestFrameSelectDropTake(t *testing.T) {
	f, err := FromRows([]string{"a", "b", "c"}, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	require.NoError(t, err)

	sel, err := f.Select([]string{"c", "a"})
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a"}, sel.Names())
	col, _ := sel.Column("c")
	require.Equal(t, []float64{3, 6, 9}, col)

	_, err = f.Select([]string{"a", "z"})
	require.ErrorIs(t, err, pkgerrors.ErrSchema)

	dropped := f.Drop("b", "missing")
	require.Equal(t, []string{"a", "c"}, dropped.Names())
	require.Equal(t, 3, dropped.Len())

	taken := f.Take([]int{2, 0})
	require.Equal(t, Record{"a": 7, "b": 8, "c": 9}, taken.Row(0))
	require.Equal(t, Record{"a": 1, "b": 2, "c": 3}, taken.Row(1))
}

func TestFrameSetDoesNotAliasInput(t *testing.T) {
	values := []float64{1, 2}
	f, err := NewFrame([]string{"a"}, [][]float64{values})
	require.NoError(t, err)
	values[0] = 99
	col, _ := f.Column("a")
	require.Equal(t, 1.0, col[0])

	clone := f.Clone()
	require.NoError(t, clone.Set("a", []float64{5, 6}))
	col, _ = f.Column("a")
	require.Equal(t, []float64{1, 2}, col)

	require.Error(t, clone.Set("b", []float64{1}))
}

func TestSchemaKinds(t *testing.T) {
	s := SchemaFor([]string{MedInc, DistanceToSF})
	require.Equal(t, Schema{{Name: MedInc, Kind: KindRaw}, {Name: DistanceToSF, Kind: KindEngineered}}, s)
	require.Equal(t, []string{MedInc, DistanceToSF}, s.Names())
}

func TestNewFrameRejectsDuplicateColumns(t *testing.T) {
	_, err := NewFrame([]string{"a", "b", "a"}, [][]float64{{1}, {2}, {3}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate column a")
}
