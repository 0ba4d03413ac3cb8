package repository

import (
	"context"
	"time"

	"CryptoLiquidity/internal/domain/models"
)

// Metrics records pipeline outcomes.
type Metrics interface {
	RecordPrediction(result string)
	RecordError(kind string)
	RecordRatio(ratio float64)
	RecordLatency(stage string, seconds float64)
}

// PredictionCache holds recent results keyed by feature vector.
// Implementations must be safe for concurrent use.
type PredictionCache interface {
	Get(ctx context.Context, v models.FeatureVector) (models.PredictionResult, bool, error)
	Set(ctx context.Context, v models.FeatureVector, ratio models.PredictionResult, ttl time.Duration) error
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordPrediction(string)       {}
func (NopMetrics) RecordError(string)            {}
func (NopMetrics) RecordRatio(float64)           {}
func (NopMetrics) RecordLatency(string, float64) {}
