package analytics

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoLiquidity/internal/domain/models"
	domsvc "CryptoLiquidity/internal/domain/service"
)

const testSchema = "liquidity/v1"

func vec(n int) models.NormalizedVector {
	v := make(models.NormalizedVector, n)
	for i := range v {
		v[i] = float64(i) / 10
	}
	return v
}

func TestHTTPPredictorPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		var req predictReq
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testSchema, req.Schema)
		assert.Len(t, req.Features, 8)
		_, _ = w.Write([]byte(`{"prediction": 0.0123}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, 0, testSchema, 8)
	got, err := p.Predict(context.Background(), vec(8))
	require.NoError(t, err)
	assert.InDelta(t, 0.0123, float64(got), 1e-12)
	assert.Equal(t, 8, p.Width())
}

func TestHTTPPredictorShapeMismatch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, 0, testSchema, 8)
	_, err := p.Predict(context.Background(), vec(7))
	require.ErrorIs(t, err, domsvc.ErrShapeMismatch)
	assert.Zero(t, calls.Load())
}

func TestHTTPPredictorRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"prediction": 0.5}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, 3, testSchema, 8)
	got, err := p.Predict(context.Background(), vec(8))
	require.NoError(t, err)
	assert.Equal(t, models.PredictionResult(0.5), got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPPredictorClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad features", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, 3, testSchema, 8)
	_, err := p.Predict(context.Background(), vec(8))
	require.ErrorIs(t, err, domsvc.ErrPrediction)
	assert.Contains(t, err.Error(), "bad features")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPPredictorBadResponses(t *testing.T) {
	cases := map[string]string{
		"missing prediction": `{}`,
		"not json":           `oops`,
		"null prediction":    `{"prediction": null}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			p := NewHTTPPredictor(srv.URL, time.Second, 0, testSchema, 8)
			_, err := p.Predict(context.Background(), vec(8))
			require.ErrorIs(t, err, domsvc.ErrPrediction)
		})
	}
}

func TestHTTPPredictorRejectsNonFiniteInput(t *testing.T) {
	p := NewHTTPPredictor("http://127.0.0.1:1", time.Second, 0, testSchema, 2)
	_, err := p.Predict(context.Background(), models.NormalizedVector{1, math.Inf(1)})
	require.ErrorIs(t, err, domsvc.ErrPrediction)
}

func TestHTTPPredictorProbe(t *testing.T) {
	var health atomic.Value
	health.Store(`{"schema": "liquidity/v1", "n_features_in": 8}`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(health.Load().(string)))
	}))
	defer srv.Close()

	p := NewHTTPPredictor(srv.URL, time.Second, 0, testSchema, 8)
	require.NoError(t, p.Probe(context.Background()))

	health.Store(`{"schema": "liquidity/v1", "n_features_in": 9}`)
	require.ErrorIs(t, p.Probe(context.Background()), domsvc.ErrArtifactLoad)

	health.Store(`{"schema": "other/v2"}`)
	require.ErrorIs(t, p.Probe(context.Background()), domsvc.ErrArtifactLoad)
}

func TestHTTPPredictorProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewHTTPPredictor(url, 200*time.Millisecond, 0, testSchema, 8)
	require.ErrorIs(t, p.Probe(context.Background()), domsvc.ErrArtifactLoad)
}
