package provider

import (
	"errors"
	"fmt"
)

// Common errors for provider operations.
var (
	// ErrNotFound indicates a zone or record is absent at the provider.
	// During populate this is recovered locally as an empty zone.
	ErrNotFound = errors.New("not found")

	// ErrAuthentication indicates a bad or missing API credential. Fatal;
	// never retried.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited indicates provider throttling that persisted through
	// the HTTP layer's retries. Fatal once surfaced.
	ErrRateLimited = errors.New("rate limited")
)

// UnexpectedError is any other non-2xx or malformed provider response. It
// carries the provider's payload for diagnostics and aborts the sync run.
type UnexpectedError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected provider response: status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected provider response: status %d: %s", e.StatusCode, e.Body)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("configuration error: %s=%q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// ErrConfigMissing creates an error for a missing required configuration field.
func ErrConfigMissing(field string) error {
	return &ConfigError{
		Field:   field,
		Message: "required but not set",
	}
}

// ErrConfigInvalid creates an error for an invalid configuration value.
func ErrConfigInvalid(field, value, message string) error {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Error wraps an error with provider and operation context.
type Error struct {
	Provider  string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Provider:  provider,
		Operation: operation,
		Err:       err,
	}
}

// IsNotFound returns true if the error indicates an absent zone or record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAuthentication returns true if the error indicates a rejected credential.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsRateLimited returns true if the error indicates exhausted throttling retries.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnexpected returns true if the error is an UnexpectedError from the provider.
func IsUnexpected(err error) bool {
	var ue *UnexpectedError
	return errors.As(err, &ue)
}
