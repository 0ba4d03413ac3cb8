package artifact

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"CryptoLiquidity/internal/domain/models"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/services/features"
)

var (
	errNonFiniteInput  = errors.New("input contains NaN or Inf")
	errNonFiniteOutput = errors.New("model produced NaN or Inf")
)

// Linear is a fitted linear regressor: coef·x + intercept.
type Linear struct {
	coef      []float64
	intercept float64
}

// NewLinear returns a linear model. coef must be non-empty and finite.
func NewLinear(coef []float64, intercept float64) (*Linear, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("linear model has no coefficients")
	}
	if !features.AllFinite(coef) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, fmt.Errorf("linear model has non-finite parameters")
	}
	return &Linear{coef: coef, intercept: intercept}, nil
}

// Width returns the fitted number of features.
func (m *Linear) Width() int { return len(m.coef) }

func (m *Linear) Kind() string { return ModelLinear }

// Predict evaluates the model.
func (m *Linear) Predict(_ context.Context, v models.NormalizedVector) (models.PredictionResult, error) {
	if err := domsvc.CheckWidth("model", len(m.coef), len(v)); err != nil {
		return 0, err
	}
	if !features.AllFinite(v) {
		return 0, &domsvc.PredictionError{Stage: "model", Err: errNonFiniteInput}
	}
	return checkOutput(floats.Dot(m.coef, v) + m.intercept)
}

func checkOutput(y float64) (models.PredictionResult, error) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, &domsvc.PredictionError{Stage: "model", Err: errNonFiniteOutput}
	}
	return models.PredictionResult(y), nil
}

var _ domsvc.Predictor = (*Linear)(nil)
