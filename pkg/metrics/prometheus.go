package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastRatio   prometheus.Gauge
	latency     *prometheus.HistogramVec
	artifacts   *prometheus.GaugeVec
}

// New creates a Prometheus recorder registered on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liquidity_predictions_total",
				Help: "Total number of prediction requests by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liquidity_errors_total",
				Help: "Total number of errors by kind",
			},
			[]string{"kind"},
		),
		lastRatio: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "liquidity_last_ratio",
				Help: "Last predicted volume-to-market-cap ratio",
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "liquidity_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"stage"},
		),
		artifacts: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "liquidity_artifact_info",
				Help: "Loaded artifacts; value is the fitted feature width",
			},
			[]string{"artifact", "kind", "schema"},
		),
	}
}

// RecordPrediction counts a finished request with result "ok", "cached" or "error".
func (r *Recorder) RecordPrediction(result string) {
	r.predictions.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRatio records the last successful prediction.
func (r *Recorder) RecordRatio(ratio float64) {
	r.lastRatio.Set(ratio)
}

// RecordLatency records stage latency in seconds.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}

// RecordArtifact exposes what was loaded at startup.
func (r *Recorder) RecordArtifact(artifact, kind, schema string, width int) {
	r.artifacts.WithLabelValues(artifact, kind, schema).Set(float64(width))
}
