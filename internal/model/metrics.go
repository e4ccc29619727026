package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Metrics summarise regression quality on one partition.
type Metrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

func Evaluate(actual, predicted []float64) (Metrics, error) {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return Metrics{}, fmt.Errorf("evaluate: %d actual vs %d predicted values", len(actual), len(predicted))
	}
	var se, ae float64
	for i := range actual {
		d := predicted[i] - actual[i]
		se += d * d
		ae += math.Abs(d)
	}
	n := float64(len(actual))
	return Metrics{
		RMSE: math.Sqrt(se / n),
		MAE:  ae / n,
		R2:   stat.RSquaredFrom(predicted, actual, nil),
	}, nil
}
