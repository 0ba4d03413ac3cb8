package web

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"CryptoLiquidity/internal/domain/models"
	xhttp "CryptoLiquidity/pkg/http"
	"CryptoLiquidity/pkg/http/middleware"
	xlogger "CryptoLiquidity/pkg/logger"
)

const indexTemplate = "index.html"

// Predictor is the use case behind the form.
type Predictor interface {
	Predict(ctx context.Context, snap models.MarketSnapshot) (*models.Prediction, error)
}

// PredictWebHandler serves the single-page form. Every outcome, including
// failures, is rendered back into the page.
type PredictWebHandler struct {
	logger  *xlogger.Logger
	svc     Predictor
	limiter middleware.Allower
}

func NewPredictWebHandler(logger *xlogger.Logger, svc Predictor, limiter middleware.Allower) *PredictWebHandler {
	return &PredictWebHandler{logger: logger, svc: svc, limiter: limiter}
}

func (h *PredictWebHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Form)
	e.POST("/predict", h.Submit)
}

// Form renders the idle page with every input at 0.
func (h *PredictWebHandler) Form(c echo.Context) error {
	return c.Render(http.StatusOK, indexTemplate, newPage(nil))
}

// Submit predicts from the posted form and renders the result or the error.
func (h *PredictWebHandler) Submit(c echo.Context) error {
	values := make(map[string]string, len(formFields))
	for _, f := range formFields {
		if v := c.FormValue(f.name); v != "" {
			values[f.name] = v
		}
	}
	page := newPage(values)

	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		page.Error = "Too many requests. Please wait a moment and try again."
		return c.Render(http.StatusTooManyRequests, indexTemplate, page)
	}

	req, perrs := parseForm(values)
	if len(perrs) > 0 {
		for name, msg := range perrs {
			page.setFieldError(name, msg)
		}
		page.Error = "Please enter numeric values."
		return c.Render(http.StatusBadRequest, indexTemplate, page)
	}
	if verrs := xhttp.ValidateStruct(c.Request().Context(), req); len(verrs) > 0 {
		for _, ve := range verrs {
			page.setFieldError(ve.Field, ve.Message)
		}
		page.Error = "Some values are out of range."
		return c.Render(http.StatusBadRequest, indexTemplate, page)
	}

	res, err := h.svc.Predict(c.Request().Context(), req.Snapshot())
	if err != nil {
		appErr := xhttp.AppErrorFromDomain(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("form predict failed", xlogger.String("code", appErr.Code), xlogger.Error(err))
		}
		page.Error = appErr.Error()
		return c.Render(appErr.Status, indexTemplate, page)
	}

	page.Result = &ResultView{Display: res.Display, Advice: res.Advice}
	return c.Render(http.StatusOK, indexTemplate, page)
}
