package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoLiquidity/internal/domain/models"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/service/ratelimit"
	xhttp "CryptoLiquidity/pkg/http"
	xlogger "CryptoLiquidity/pkg/logger"
)

type stubPredictor struct {
	got  models.MarketSnapshot
	resp *models.Prediction
	err  error
}

func (s *stubPredictor) Predict(_ context.Context, snap models.MarketSnapshot) (*models.Prediction, error) {
	s.got = snap
	return s.resp, s.err
}

func newServer(t *testing.T, svc Predictor, limiter *ratelimit.Limiter) *xhttp.Server {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return xhttp.NewServer(NewPredictWebHandler(xlogger.Nop(), svc, limiter), xhttp.WithRenderer(r))
}

func submit(s *xhttp.Server, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func fullForm() url.Values {
	return url.Values{
		"price":      {"50000"},
		"change_1h":  {"0.5"},
		"change_24h": {"-2"},
		"change_7d":  {"5"},
		"volume_24h": {"30000000000"},
		"market_cap": {"950000000000"},
	}
}

func TestFormRendersIdlePage(t *testing.T) {
	s := newServer(t, &stubPredictor{}, nil)

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Cryptocurrency Liquidity Prediction</h1>")
	assert.Contains(t, body, "Enter cryptocurrency market data to predict the liquidity ratio (volume to market cap).")
	for _, label := range []string{
		"Current Price (USD)",
		"1h Price Change (%)",
		"24h Price Change (%)",
		"7d Price Change (%)",
		"24h Trading Volume (USD)",
		"Market Capitalization (USD)",
	} {
		assert.Contains(t, body, label)
	}
	assert.Contains(t, body, `name="price" value="0" step="0.01" min="0"`)
	assert.Contains(t, body, `name="change_1h" value="0" step="0.01">`)
	assert.Contains(t, body, `name="market_cap" value="0" step="any" min="0"`)
	assert.Contains(t, body, "Predict Liquidity Ratio")
	assert.NotContains(t, body, `id="result"`)
	assert.NotContains(t, body, `id="error"`)
}

func TestSubmitShowsResult(t *testing.T) {
	svc := &stubPredictor{resp: &models.Prediction{
		Ratio:   0.0315,
		Display: "0.0315",
		Advice:  "Higher values indicate more liquid cryptocurrencies.",
	}}
	s := newServer(t, svc, nil)

	rec := submit(s, fullForm())
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Predicted Volume-to-MarketCap Ratio: 0.0315")
	assert.Contains(t, body, "Higher values indicate more liquid cryptocurrencies.")
	assert.Contains(t, body, `name="market_cap" value="950000000000"`)
	assert.Equal(t, models.MarketSnapshot{
		Price: 50000, Change1h: 0.5, Change24h: -2, Change7d: 5, Volume24h: 3e10, MarketCap: 9.5e11,
	}, svc.got)
}

func TestSubmitBlankFieldsAreZero(t *testing.T) {
	svc := &stubPredictor{resp: &models.Prediction{Display: "0.0000"}}
	s := newServer(t, svc, nil)

	rec := submit(s, url.Values{"price": {"10"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.MarketSnapshot{Price: 10}, svc.got)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	svc := &stubPredictor{}
	s := newServer(t, svc, nil)

	form := fullForm()
	form.Set("change_7d", "lots")
	rec := submit(s, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "7d Price Change (%): &#34;lots&#34; is not a number")
	assert.Contains(t, rec.Body.String(), `value="lots"`)

	form = fullForm()
	form.Set("market_cap", "-1")
	rec = submit(s, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "market_cap must be greater than or equal to 0")
	assert.Equal(t, models.MarketSnapshot{}, svc.got)
}

func TestSubmitRendersPipelineErrors(t *testing.T) {
	svc := &stubPredictor{err: &domsvc.PredictionError{Stage: "model", Err: errors.New("estimator failed")}}
	s := newServer(t, svc, nil)

	rec := submit(s, fullForm())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="error"`)
	assert.Contains(t, rec.Body.String(), "estimator failed")
	assert.NotContains(t, rec.Body.String(), `id="result"`)

	svc.err = domsvc.CheckWidth("scaler", 9, 8)
	rec = submit(s, fullForm())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Model artifacts do not match the feature schema")

	// the page keeps working after a failure
	svc.err = nil
	svc.resp = &models.Prediction{Display: "0.1000", Advice: "ok"}
	rec = submit(s, fullForm())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Predicted Volume-to-MarketCap Ratio: 0.1000")
}

func TestSubmitRateLimited(t *testing.T) {
	svc := &stubPredictor{resp: &models.Prediction{Display: "0.0100"}}
	s := newServer(t, svc, ratelimit.New(0.001, 1))

	assert.Equal(t, http.StatusOK, submit(s, fullForm()).Code)
	rec := submit(s, fullForm())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")
}
