package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for different failure scenarios
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeModelUnavailable = "MODEL_UNAVAILABLE"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeDatabase         = "DATABASE_ERROR"
	ErrCodeAuthentication   = "AUTHENTICATION_ERROR"
	ErrCodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal         = "INTERNAL_SERVER_ERROR"
)

// ErrModelUnavailable is returned when the scoring capability cannot be
// obtained. It must propagate to the caller rather than substitute a default
// score; a silently wrong risk score would mask diagnostic risk.
var ErrModelUnavailable = errors.New("prediction model unavailable")

// ErrNotFound is returned by repositories when an entity does not exist.
var ErrNotFound = errors.New("not found")

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError represents a rejected clinical field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
