package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Describe maps a service error to the HTTP status and user-facing message
// returned to clients. fallback is used for unclassified failures.
func Describe(err error, fallback string) (int, string) {
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, fmt.Sprintf("Missing required field: %s", missing.Field)
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "Rate limit exceeded. Please try again in a moment."
	case errors.Is(err, ErrCreditsExhausted):
		return http.StatusPaymentRequired, "AI credits exhausted. Please add credits in Settings."
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid generation type"
	case errors.Is(err, ErrNoFileContent):
		return http.StatusBadRequest, "No file content provided"
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, "AI provider is not configured"
	case errors.Is(err, ErrEmptyContent):
		return http.StatusInternalServerError, "No content generated"
	case errors.Is(err, ErrUnparseable):
		return http.StatusInternalServerError, "Failed to parse resume data"
	default:
		return http.StatusInternalServerError, fallback
	}
}
