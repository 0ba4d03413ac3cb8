package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoLiquidity/internal/domain/models"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/service/cache"
	"CryptoLiquidity/internal/services/features"
)

type identityScaler struct {
	width int
	panic bool
}

func (s identityScaler) Width() int { return s.width }

func (s identityScaler) Transform(v models.FeatureVector) (models.NormalizedVector, error) {
	if s.panic {
		panic("scaler exploded")
	}
	if err := domsvc.CheckWidth("scaler", s.width, len(v)); err != nil {
		return nil, err
	}
	return models.NormalizedVector(append([]float64(nil), v...)), nil
}

type stubModel struct {
	mu    sync.Mutex
	calls int
	seen  models.NormalizedVector
	fn    func(call int, v models.NormalizedVector) (models.PredictionResult, error)
}

func (m *stubModel) Width() int { return 8 }

func (m *stubModel) Predict(_ context.Context, v models.NormalizedVector) (models.PredictionResult, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.seen = v
	m.mu.Unlock()
	return m.fn(call, v)
}

func constant(r float64) *stubModel {
	return &stubModel{fn: func(int, models.NormalizedVector) (models.PredictionResult, error) {
		return models.PredictionResult(r), nil
	}}
}

type countingMetrics struct {
	mu      sync.Mutex
	results map[string]int
	errs    map[string]int
	ratio   float64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{results: map[string]int{}, errs: map[string]int{}}
}

func (m *countingMetrics) RecordPrediction(r string) { m.mu.Lock(); m.results[r]++; m.mu.Unlock() }
func (m *countingMetrics) RecordError(k string)      { m.mu.Lock(); m.errs[k]++; m.mu.Unlock() }
func (m *countingMetrics) RecordRatio(v float64)     { m.mu.Lock(); m.ratio = v; m.mu.Unlock() }
func (m *countingMetrics) RecordLatency(string, float64) {}

var btcLike = models.MarketSnapshot{
	Price:     50000,
	Change1h:  0.5,
	Change24h: -2.0,
	Change7d:  5.0,
	Volume24h: 3e10,
	MarketCap: 9.5e11,
}

func TestPredictEndToEnd(t *testing.T) {
	model := constant(0.0315)
	m := newCountingMetrics()
	p := NewLiquidityPredictor(identityScaler{width: 8}, model, WithMetrics(m))

	got, err := p.Predict(context.Background(), btcLike)
	require.NoError(t, err)

	assert.Equal(t, models.FeatureVector{50000, 0.5, -2.0, 5.0, 3e10, 9.5e11, 2.0, 5.0}, got.Features)
	assert.Equal(t, []float64(got.Features), []float64(model.seen))
	assert.Equal(t, models.PredictionResult(0.0315), got.Ratio)
	assert.Equal(t, "0.0315", got.Display)
	assert.Equal(t, Advice, got.Advice)
	assert.False(t, got.Cached)
	assert.False(t, got.Timestamp.IsZero())

	assert.Equal(t, 1, m.results["ok"])
	assert.Equal(t, 0.0315, m.ratio)
	assert.Equal(t, features.Width(), p.Width())
}

func TestPredictRoundsDisplay(t *testing.T) {
	p := NewLiquidityPredictor(identityScaler{width: 8}, constant(0.123456))
	got, err := p.Predict(context.Background(), models.MarketSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, "0.1235", got.Display)
	assert.Equal(t, models.PredictionResult(0.123456), got.Ratio)
}

func TestPredictShapeMismatch(t *testing.T) {
	model := constant(1)
	m := newCountingMetrics()
	p := NewLiquidityPredictor(identityScaler{width: 9}, model, WithMetrics(m))

	_, err := p.Predict(context.Background(), btcLike)
	require.ErrorIs(t, err, domsvc.ErrShapeMismatch)

	var sm *domsvc.ShapeMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, 9, sm.Want)
	assert.Equal(t, 8, sm.Got)
	assert.Zero(t, model.calls)
	assert.Equal(t, 1, m.errs[KindShapeMismatch])
	assert.Equal(t, KindShapeMismatch, ErrorKind(err))
}

func TestPredictFailureThenRecovery(t *testing.T) {
	model := &stubModel{fn: func(call int, _ models.NormalizedVector) (models.PredictionResult, error) {
		if call == 1 {
			return 0, errors.New("estimator unavailable")
		}
		return 0.02, nil
	}}
	m := newCountingMetrics()
	p := NewLiquidityPredictor(identityScaler{width: 8}, model, WithMetrics(m))

	_, err := p.Predict(context.Background(), btcLike)
	require.ErrorIs(t, err, domsvc.ErrPrediction)
	assert.Contains(t, err.Error(), "estimator unavailable")

	got, err := p.Predict(context.Background(), btcLike)
	require.NoError(t, err)
	assert.Equal(t, "0.0200", got.Display)

	assert.Equal(t, 1, m.results["error"])
	assert.Equal(t, 1, m.results["ok"])
	assert.Equal(t, 1, m.errs[KindPrediction])
}

func TestPredictRecoversPanics(t *testing.T) {
	model := &stubModel{fn: func(int, models.NormalizedVector) (models.PredictionResult, error) {
		panic("index out of range")
	}}
	p := NewLiquidityPredictor(identityScaler{width: 8}, model)

	got, err := p.Predict(context.Background(), btcLike)
	require.Nil(t, got)
	require.ErrorIs(t, err, domsvc.ErrPrediction)

	var pe *domsvc.PredictionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "model", pe.Stage)
	assert.Contains(t, err.Error(), "index out of range")

	p = NewLiquidityPredictor(identityScaler{width: 8, panic: true}, constant(1))
	_, err = p.Predict(context.Background(), btcLike)
	require.ErrorIs(t, err, domsvc.ErrPrediction)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "scaler", pe.Stage)
}

func TestPredictKeepsPredictionErrors(t *testing.T) {
	orig := &domsvc.PredictionError{Stage: "model", Err: errors.New("nan output")}
	model := &stubModel{fn: func(int, models.NormalizedVector) (models.PredictionResult, error) {
		return 0, orig
	}}
	p := NewLiquidityPredictor(identityScaler{width: 8}, model)

	_, err := p.Predict(context.Background(), btcLike)
	var pe *domsvc.PredictionError
	require.True(t, errors.As(err, &pe))
	assert.Same(t, orig, pe)
}

func TestPredictUsesCache(t *testing.T) {
	model := constant(0.07)
	store := cache.NewTTLCache(16)
	p := NewLiquidityPredictor(identityScaler{width: 8}, model,
		WithCache(cache.NewPredictionCache(store, features.SchemaVersion), 0))

	first, err := p.Predict(context.Background(), btcLike)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := p.Predict(context.Background(), btcLike)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Ratio, second.Ratio)
	assert.Equal(t, first.Display, second.Display)
	assert.Equal(t, first.Normalized, second.Normalized)
	assert.Equal(t, 1, model.calls)

	other := btcLike
	other.Price = 1
	_, err = p.Predict(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, model.calls)
	assert.Equal(t, 2, store.Len())
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, KindArtifact, ErrorKind(domsvc.ErrArtifactLoad))
	assert.Equal(t, KindOther, ErrorKind(errors.New("x")))
}
