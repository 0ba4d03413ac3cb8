package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"CryptoLiquidity/internal/domain/models"
	"CryptoLiquidity/internal/services/features"
	xhttp "CryptoLiquidity/pkg/http"
	"CryptoLiquidity/pkg/http/middleware"
	xlogger "CryptoLiquidity/pkg/logger"
)

// Predictor is the use case behind the JSON API.
type Predictor interface {
	Predict(ctx context.Context, snap models.MarketSnapshot) (*models.Prediction, error)
}

// PredictEchoHandler serves the JSON API.
type PredictEchoHandler struct {
	logger  *xlogger.Logger
	svc     Predictor
	limiter middleware.Allower
}

func NewPredictEchoHandler(logger *xlogger.Logger, svc Predictor, limiter middleware.Allower) *PredictEchoHandler {
	return &PredictEchoHandler{logger: logger, svc: svc, limiter: limiter}
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predict", h.Predict, middleware.RateLimit(h.limiter))
	g.GET("/schema", h.Schema)
	e.GET("/healthz", h.Health)
}

// Predict scores one market snapshot.
func (h *PredictEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Predict(c.Request().Context(), req.Snapshot())
	if err != nil {
		appErr := xhttp.AppErrorFromDomain(err)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("predict failed", xlogger.String("code", appErr.Code), xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, appErr)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, &models.PredictResponse{
		Ratio:      float64(res.Ratio),
		Display:    res.Display,
		Advice:     res.Advice,
		Features:   res.Features,
		Normalized: res.Normalized,
		Schema:     features.SchemaVersion,
		Cached:     res.Cached,
	})
}

// Schema lists the feature order the artifacts were fitted on.
func (h *PredictEchoHandler) Schema(c echo.Context) error {
	return xhttp.SuccessResponse(c, &models.SchemaResponse{
		Version: features.SchemaVersion,
		Fields:  features.Fields(),
	})
}

// Health reports readiness. Artifacts are loaded before the listener starts,
// so a running process is ready.
func (h *PredictEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status": "ok",
		"schema": features.SchemaVersion,
		"width":  features.Width(),
	})
}
