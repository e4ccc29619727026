package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuantileMatchesLinearInterpolation(t *testing.T) {
	x := []float64{7, 1, 3, 5, 9}
	cases := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 3},
		{0.5, 5},
		{0.1, 1.8},
		{0.99, 8.92},
		{1, 9},
	}
	for _, tc := range cases {
		require.InDelta(t, tc.want, Quantile(x, tc.q), 1e-12, "q=%v", tc.q)
	}
	if x[0] != 7 {
		t.Fatalf("input was sorted in place: %v", x)
	}
}

func TestMedianEvenLength(t *testing.T) {
	require.InDelta(t, 2.5, Median([]float64{4, 1, 3, 2}), 1e-12)
}

func TestQuantilesSingleSort(t *testing.T) {
	got := Quantiles([]float64{1, 2, 3, 4}, 0.25, 0.5, 0.75)
	require.InDeltaSlice(t, []float64{1.75, 2.5, 3.25}, got, 1e-12)
}

func TestQuantileEmpty(t *testing.T) {
	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Fatalf("expected NaN for empty input")
	}
}

func TestPercentile(t *testing.T) {
	require.InDelta(t, Quantile([]float64{1, 2, 3}, 0.01), Percentile([]float64{1, 2, 3}, 1), 1e-15)
}

func TestNonFinite(t *testing.T) {
	got := NonFinite([]float64{1, math.NaN(), 2, math.Inf(1), math.Inf(-1)})
	require.Equal(t, []int{1, 3, 4}, got)
	require.Empty(t, NonFinite([]float64{0, 1}))
}
