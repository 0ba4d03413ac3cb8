package http

import (
	"errors"
	"fmt"
	"net/http"

	domsvc "CryptoLiquidity/internal/domain/service"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
}

// ShapeMismatchError is returned when the feature vector does not fit the loaded artifacts.
// The input is fine; the deployment is not.
func ShapeMismatchError(err error) *AppError {
	e := NewAppError("ERR_SHAPE_MISMATCH", "", "Model artifacts do not match the feature schema", http.StatusInternalServerError).WithError(err)
	var sm *domsvc.ShapeMismatchError
	if errors.As(err, &sm) {
		e.WithParam("stage", sm.Stage).WithParam("want", sm.Want).WithParam("got", sm.Got)
	}
	return e
}

// PredictionError is returned when the model could not score the input.
func PredictionError(err error) *AppError {
	return NewAppError("ERR_PREDICTION", "", "Prediction failed for the given input", http.StatusUnprocessableEntity).WithError(err)
}

// AppErrorFromDomain maps pipeline errors onto AppError. Unknown errors become ERR_INTERNAL.
func AppErrorFromDomain(err error) *AppError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domsvc.ErrShapeMismatch):
		return ShapeMismatchError(err)
	case errors.Is(err, domsvc.ErrPrediction):
		return PredictionError(err)
	default:
		return InternalError("Something went wrong").WithError(err)
	}
}
