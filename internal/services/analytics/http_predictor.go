package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoLiquidity/internal/domain/models"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/services/features"
	xhttp "CryptoLiquidity/pkg/http"
)

// HTTPPredictor delegates inference to a model-serving sidecar that holds the
// original estimator.
//
//	POST {url}/predict  {"schema": "...", "features": [...]}  ->  {"prediction": 0.0123}
//	GET  {url}/health   {"schema": "...", "n_features_in": 8}
type HTTPPredictor struct {
	base   *HTTPServiceBase
	schema string
	width  int
}

func NewHTTPPredictor(url string, timeout time.Duration, retries int, schema string, width int, opts ...xhttp.ClientOption) *HTTPPredictor {
	return &HTTPPredictor{
		base:   NewHTTPServiceBase(url, timeout, retries, opts...),
		schema: schema,
		width:  width,
	}
}

type predictReq struct {
	Schema   string    `json:"schema"`
	Features []float64 `json:"features"`
}

type predictResp struct {
	Prediction *float64 `json:"prediction"`
}

type healthResp struct {
	Schema    string `json:"schema"`
	NFeatures int    `json:"n_features_in"`
}

// Width returns the feature width the sidecar is expected to accept.
func (p *HTTPPredictor) Width() int { return p.width }

// Probe checks the sidecar once at startup. Failures wrap domsvc.ErrArtifactLoad.
func (p *HTTPPredictor) Probe(ctx context.Context) error {
	var hr healthResp
	if err := p.base.Do(ctx, xhttp.MethodGet, "/health", nil, &hr); err != nil {
		return fmt.Errorf("%w: model service: %v", domsvc.ErrArtifactLoad, err)
	}
	if hr.Schema != "" && hr.Schema != p.schema {
		return fmt.Errorf("%w: model service schema %q does not match %q", domsvc.ErrArtifactLoad, hr.Schema, p.schema)
	}
	if hr.NFeatures != 0 && hr.NFeatures != p.width {
		return fmt.Errorf("%w: model service expects %d features, schema has %d", domsvc.ErrArtifactLoad, hr.NFeatures, p.width)
	}
	return nil
}

func (p *HTTPPredictor) Predict(ctx context.Context, v models.NormalizedVector) (models.PredictionResult, error) {
	if err := domsvc.CheckWidth("model", p.width, len(v)); err != nil {
		return 0, err
	}
	// NaN/Inf cannot be encoded as JSON numbers
	if !features.AllFinite(v) {
		return 0, &domsvc.PredictionError{Stage: "model", Err: errors.New("input contains NaN or Inf")}
	}

	var pr predictResp
	if err := p.base.Do(ctx, xhttp.MethodPost, "/predict", predictReq{Schema: p.schema, Features: v}, &pr); err != nil {
		return 0, &domsvc.PredictionError{Stage: "model service", Err: err}
	}
	if pr.Prediction == nil {
		return 0, &domsvc.PredictionError{Stage: "model service", Err: errors.New("response has no prediction")}
	}
	if !features.AllFinite([]float64{*pr.Prediction}) {
		return 0, &domsvc.PredictionError{Stage: "model service", Err: errors.New("prediction is NaN or Inf")}
	}
	return models.PredictionResult(*pr.Prediction), nil
}

var _ domsvc.Predictor = (*HTTPPredictor)(nil)
