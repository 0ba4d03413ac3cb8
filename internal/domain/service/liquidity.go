package service

import (
	"context"

	"CryptoLiquidity/internal/domain/models"
)

// Scaler applies a fitted transform to a raw feature vector.
type Scaler interface {
	Transform(v models.FeatureVector) (models.NormalizedVector, error)
	Width() int
}

// Predictor maps a normalized vector to a predicted liquidity ratio.
type Predictor interface {
	Predict(ctx context.Context, v models.NormalizedVector) (models.PredictionResult, error)
	Width() int
}
