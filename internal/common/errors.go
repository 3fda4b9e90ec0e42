package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy. Every error surfaced by the pipeline wraps exactly one of
// these sentinels so callers can classify with errors.Is.
var (
	// ErrPreconditionUnmet routes to a waiting terminal, never to Failed.
	ErrPreconditionUnmet = errors.New("precondition unmet")
	// ErrMissingUpstreamArtifact means a checkpoint said an artifact exists but
	// a load could not find it. Integrity error; halts the invocation.
	ErrMissingUpstreamArtifact = errors.New("missing upstream artifact")
	ErrWorkerUnavailable       = errors.New("stage worker unavailable")
	ErrMalformedWorkerOutput   = errors.New("malformed worker output")
	ErrStorageFailure          = errors.New("storage failure")
	// ErrSchedulingConflict is per-candidate and non-fatal to the stage.
	ErrSchedulingConflict = errors.New("scheduling conflict")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
