package utils

import "fmt"

const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeUpstream   = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code, message string, details ...string) *AppError {
	err := &AppError{Code: code, Message: message}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
