package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Is matches any AppError carrying the same code, so wrapped copies made by
// WithError still satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrTimeout = &AppError{
		Code:       "TIMEOUT",
		Message:    "The request took too long",
		StatusCode: 504,
	}

	ErrNotReady = &AppError{
		Code:       "NOT_READY",
		Message:    "Backing store unreachable",
		StatusCode: 503,
	}

	// Image / detection errors
	ErrMissingImage = &AppError{
		Code:       "MISSING_IMAGE",
		Message:    "Multipart field 'input' is required",
		StatusCode: 400,
	}

	ErrDecodeFailed = &AppError{
		Code:       "DECODE_FAILED",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "no detections were found, please try with a better image!",
		StatusCode: 422,
	}

	ErrInference = &AppError{
		Code:       "INFERENCE_FAILED",
		Message:    "Model inference failed",
		StatusCode: 500,
	}

	// Store errors
	ErrInvalidEmbedding = &AppError{
		Code:       "INVALID_EMBEDDING",
		Message:    "invalid vector dimension , input vector must be exactly 512 long!",
		StatusCode: 400,
	}

	ErrFaceNotFound = &AppError{
		Code:       "FACE_NOT_FOUND",
		Message:    "no results were found for the given face_uuid",
		StatusCode: 404,
	}

	ErrFaceExists = &AppError{
		Code:       "FACE_ALREADY_EXISTS",
		Message:    "Face already registered for this face_uuid",
		StatusCode: 409,
	}

	ErrInvalidCount = &AppError{
		Code:       "INVALID_COUNT",
		Message:    "count must be a positive integer",
		StatusCode: 422,
	}

	// Gateway errors
	ErrUpstreamUnavailable = &AppError{
		Code:       "UPSTREAM_UNAVAILABLE",
		Message:    "An upstream service is unavailable",
		StatusCode: 502,
	}
)
