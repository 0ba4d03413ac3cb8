package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoLiquidity/internal/domain/models"
	domrepo "CryptoLiquidity/internal/domain/repository"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/services/features"
	"CryptoLiquidity/pkg/logger"
	"CryptoLiquidity/pkg/util"
)

// Advice accompanies every displayed prediction.
const Advice = "Higher values indicate more liquid cryptocurrencies."

// DisplayPlaces is the number of decimals shown for a ratio.
const DisplayPlaces = 4

// LiquidityPredictor runs snapshot -> features -> scaler -> model.
// Safe for concurrent use once built; the artifacts are read-only.
type LiquidityPredictor struct {
	scaler  domsvc.Scaler
	model   domsvc.Predictor
	metrics domrepo.Metrics
	cache   domrepo.PredictionCache
	ttl     time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// Option configures LiquidityPredictor.
type Option func(*LiquidityPredictor)

// WithMetrics sets the metrics recorder.
func WithMetrics(m domrepo.Metrics) Option {
	return func(p *LiquidityPredictor) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithCache enables result caching for ttl.
func WithCache(c domrepo.PredictionCache, ttl time.Duration) Option {
	return func(p *LiquidityPredictor) {
		p.cache = c
		p.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *LiquidityPredictor) {
		if l != nil {
			p.log = l
		}
	}
}

func NewLiquidityPredictor(scaler domsvc.Scaler, model domsvc.Predictor, opts ...Option) *LiquidityPredictor {
	p := &LiquidityPredictor{
		scaler:  scaler,
		model:   model,
		metrics: domrepo.NopMetrics{},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict returns the predicted liquidity ratio for snap. Failures are
// returned as ShapeMismatchError or PredictionError; a panic inside the
// scaler or the model is reported as a PredictionError.
func (p *LiquidityPredictor) Predict(ctx context.Context, snap models.MarketSnapshot) (res *models.Prediction, err error) {
	start := p.now()
	stage := "features"
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &domsvc.PredictionError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
		p.finish(start, res, err)
	}()

	fv := features.Build(snap)

	stage = "scaler"
	t := p.now()
	norm, err := p.scaler.Transform(fv)
	p.metrics.RecordLatency(stage, p.now().Sub(t).Seconds())
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", pipelineError(stage, err))
	}

	out := &models.Prediction{
		Snapshot:   snap,
		Features:   fv,
		Normalized: norm,
		Advice:     Advice,
	}

	stage = "cache"
	if ratio, ok := p.cached(ctx, fv); ok {
		out.Ratio = ratio
		out.Cached = true
		return p.complete(out), nil
	}

	stage = "model"
	t = p.now()
	ratio, err := p.model.Predict(ctx, norm)
	p.metrics.RecordLatency(stage, p.now().Sub(t).Seconds())
	if err != nil {
		return nil, fmt.Errorf("predict: %w", pipelineError(stage, err))
	}
	out.Ratio = ratio

	if p.cache != nil {
		if cerr := p.cache.Set(ctx, fv, ratio, p.ttl); cerr != nil {
			p.log.Warn("prediction cache set failed", logger.Error(cerr))
		}
	}
	return p.complete(out), nil
}

// Width is the feature width the pipeline was built for.
func (p *LiquidityPredictor) Width() int { return features.Width() }

func (p *LiquidityPredictor) cached(ctx context.Context, fv models.FeatureVector) (models.PredictionResult, bool) {
	if p.cache == nil {
		return 0, false
	}
	ratio, ok, err := p.cache.Get(ctx, fv)
	if err != nil {
		p.log.Warn("prediction cache get failed", logger.Error(err))
		return 0, false
	}
	return ratio, ok
}

func (p *LiquidityPredictor) complete(out *models.Prediction) *models.Prediction {
	out.Display = util.FormatFixed(float64(out.Ratio), DisplayPlaces)
	out.Timestamp = p.now()
	p.metrics.RecordRatio(float64(out.Ratio))
	p.log.Debug("predict ok",
		logger.Floats("features", out.Features),
		logger.Float64("ratio", float64(out.Ratio)),
		logger.Bool("cached", out.Cached),
	)
	return out
}

func (p *LiquidityPredictor) finish(start time.Time, res *models.Prediction, err error) {
	p.metrics.RecordLatency("total", p.now().Sub(start).Seconds())
	if err == nil {
		if res.Cached {
			p.metrics.RecordPrediction("cached")
		} else {
			p.metrics.RecordPrediction("ok")
		}
		return
	}
	kind := ErrorKind(err)
	p.metrics.RecordPrediction("error")
	p.metrics.RecordError(kind)
	if kind == KindShapeMismatch {
		p.log.Error("feature width does not match artifacts", logger.Error(err))
		return
	}
	p.log.Warn("prediction failed", logger.String("kind", kind), logger.Error(err))
}

// pipelineError keeps shape and prediction errors as they are and reports
// anything else as a PredictionError of stage.
func pipelineError(stage string, err error) error {
	if errors.Is(err, domsvc.ErrShapeMismatch) || errors.Is(err, domsvc.ErrPrediction) {
		return err
	}
	return &domsvc.PredictionError{Stage: stage, Err: err}
}

const (
	KindShapeMismatch = "shape_mismatch"
	KindPrediction    = "prediction"
	KindArtifact      = "artifact"
	KindOther         = "other"
)

// ErrorKind classifies err for metrics and responses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domsvc.ErrShapeMismatch):
		return KindShapeMismatch
	case errors.Is(err, domsvc.ErrPrediction):
		return KindPrediction
	case errors.Is(err, domsvc.ErrArtifactLoad):
		return KindArtifact
	default:
		return KindOther
	}
}
