package elevenlabs

import (
	"errors"
	"fmt"
)

// Common provider errors
var (
	// ErrEmptyText is returned when attempting to synthesize empty text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidAPIKey is returned on authentication failure.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrInvalidVoice is returned when the requested voice does not exist.
	ErrInvalidVoice = errors.New("invalid or unknown voice")

	// ErrRateLimited is returned when API rate limits are exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrServiceUnavailable is returned on provider-side failures.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrSettingsOutOfRange is returned for voice settings outside [0,1].
	ErrSettingsOutOfRange = errors.New("voice settings out of range")
)

// APIError carries the provider's error envelope for a failed request
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Cause != nil {
		return fmt.Sprintf("elevenlabs: %s (status %d): %v", msg, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("elevenlabs: %s (status %d)", msg, e.StatusCode)
}

// Unwrap returns the sentinel cause, if any
func (e *APIError) Unwrap() error {
	return e.Cause
}
