package service

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactLoad marks a scaler or model that could not be loaded. Fatal at startup.
	ErrArtifactLoad = errors.New("artifact load failure")
	// ErrShapeMismatch marks a vector whose width disagrees with a fitted artifact.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrPrediction marks an inference call that failed for the given input.
	ErrPrediction = errors.New("prediction failure")
)

// ShapeMismatchError reports which stage rejected the vector.
type ShapeMismatchError struct {
	Stage string
	Want  int
	Got   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s expects %d features, got %d", ErrShapeMismatch, e.Stage, e.Want, e.Got)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// CheckWidth returns a ShapeMismatchError when got != want.
func CheckWidth(stage string, want, got int) error {
	if want != got {
		return &ShapeMismatchError{Stage: stage, Want: want, Got: got}
	}
	return nil
}

// PredictionError wraps an inference failure with the stage it came from.
type PredictionError struct {
	Stage string
	Err   error
}

func (e *PredictionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrPrediction, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrPrediction, e.Stage)
}

func (e *PredictionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPrediction}
	}
	return []error{ErrPrediction, e.Err}
}
