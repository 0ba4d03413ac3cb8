package models

import "time"

// MarketSnapshot is the market data entered for a single prediction.
type MarketSnapshot struct {
	Price     float64 // USD
	Change1h  float64 // percent
	Change24h float64 // percent
	Change7d  float64 // percent
	Volume24h float64 // USD
	MarketCap float64 // USD
}

// FeatureVector is the raw model input in schema order.
type FeatureVector []float64

// NormalizedVector is a FeatureVector after the fitted scaler was applied.
type NormalizedVector []float64

// PredictionResult is the predicted volume-to-market-cap ratio.
type PredictionResult float64

// Prediction is the outcome of one pass through the pipeline.
type Prediction struct {
	Snapshot   MarketSnapshot
	Features   FeatureVector
	Normalized NormalizedVector
	Ratio      PredictionResult
	Display    string // ratio formatted to 4 decimals
	Advice     string
	Timestamp  time.Time
	Cached     bool
}
