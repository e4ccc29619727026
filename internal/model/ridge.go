// Package model holds the regressor that consumes preprocessed features and
// the metadata written next to it.
package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

// Regressor predicts one value per row of a feature matrix.
type Regressor interface {
	Predict(x mat.Matrix) ([]float64, error)
	NumFeatures() int
}

const TypeRidge = "ridge"

// Ridge is an L2-regularised linear model with an unpenalised intercept.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

// FitRidge solves (XcᵀXc + αI)β = Xcᵀyc on centered data.
func FitRidge(x mat.Matrix, y []float64, alpha float64) (*Ridge, error) {
	r, c := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("ridge: %w: %d rows but %d targets", pkgerrors.ErrInvalidArgument, r, len(y))
	}
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("ridge: %w: empty design matrix", pkgerrors.ErrInvalidArgument)
	}
	if alpha < 0 {
		return nil, pkgerrors.Configuration("ridge alpha", "must be >= 0, got %v", alpha)
	}

	means := make([]float64, c)
	centered := mat.DenseCopyOf(x)
	for j := 0; j < c; j++ {
		col := mat.Col(nil, j, centered)
		means[j] = stat.Mean(col, nil)
		floats.AddConst(-means[j], col)
		centered.SetCol(j, col)
	}
	yMean := stat.Mean(y, nil)
	yc := make([]float64, len(y))
	copy(yc, y)
	floats.AddConst(-yMean, yc)

	var gram mat.SymDense
	gram.SymOuterK(1, centered.T())
	for j := 0; j < c; j++ {
		gram.SetSym(j, j, gram.At(j, j)+alpha)
	}
	var rhs mat.VecDense
	rhs.MulVec(centered.T(), mat.NewVecDense(len(yc), yc))

	var beta mat.VecDense
	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); ok {
		if err := chol.SolveVecTo(&beta, &rhs); err != nil {
			return nil, fmt.Errorf("ridge: solve: %w", err)
		}
	} else if err := beta.SolveVec(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("ridge: singular system, raise alpha: %w", err)
	}

	coef := mat.Col(nil, 0, &beta)
	return &Ridge{
		Alpha:     alpha,
		Intercept: yMean - floats.Dot(means, coef),
		Coef:      coef,
	}, nil
}

func (m *Ridge) NumFeatures() int { return len(m.Coef) }

func (m *Ridge) Predict(x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	if c != len(m.Coef) {
		return nil, fmt.Errorf("ridge: %w: got %d features, model has %d", pkgerrors.ErrInvalidArgument, c, len(m.Coef))
	}
	out := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, x)
		out[i] = m.Intercept + floats.Dot(row, m.Coef)
	}
	return out, nil
}
