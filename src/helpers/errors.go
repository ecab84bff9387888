package helpers

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks
type ConfigurationError struct{ DashboardError }
type NetworkError struct{ DashboardError }
type DataSourceError struct{ DashboardError }
type DatabaseError struct{ DashboardError }
type ValidationError struct{ DashboardError }

// RateLimitError is returned when a provider answers 429/403.
type RateLimitError struct {
	DashboardError
	StatusCode int
}

// -----------------------------------------------------------------------------

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

func NewDatabaseError(op string, cause error) error {
	return &DatabaseError{DashboardError{Message: op, Cause: cause}}
}

func NewNetworkError(msg string, cause error) error {
	return &NetworkError{DashboardError{Message: msg, Cause: cause}}
}

// NewDataSourceError reports a provider that answered without usable data.
func NewDataSourceError(source, msg string) error {
	return &DataSourceError{DashboardError{Message: fmt.Sprintf("%s: %s", source, msg)}}
}

// -----------------------------------------------------------------------------
// Fallback classification
// -----------------------------------------------------------------------------

// Reasons a provider response was judged unusable.
const (
	ReasonTransport     = "transport"
	ReasonRateLimited   = "rate_limited"
	ReasonInformational = "informational"
	ReasonMalformed     = "malformed"
	ReasonEmpty         = "empty"
	ReasonPanic         = "panic"
	ReasonNoSource      = "no_source"
)

// FallbackError is the only error a quote source returns. It tells the
// caller to substitute synthetic data.
type FallbackError struct {
	Source string
	Reason string
	Cause  error
}

func (e *FallbackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s unusable (%s): %v", e.Source, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s unusable (%s)", e.Source, e.Reason)
}

func (e *FallbackError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// NewFallback wraps cause, picking the reason from its type when reason is empty.
func NewFallback(source, reason string, cause error) *FallbackError {
	if reason == "" {
		reason = ReasonOf(cause)
	}
	return &FallbackError{Source: source, Reason: reason, Cause: cause}
}

// -----------------------------------------------------------------------------

// ReasonOf maps an error onto a fallback reason.
func ReasonOf(err error) string {
	var fb *FallbackError
	var rl *RateLimitError
	var ve *ValidationError
	var ds *DataSourceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fb):
		return fb.Reason
	case errors.As(err, &rl):
		return ReasonRateLimited
	case errors.As(err, &ve):
		return ReasonMalformed
	case errors.As(err, &ds):
		return ReasonEmpty
	default:
		return ReasonTransport
	}
}

// -----------------------------------------------------------------------------

// PanicError converts a recovered value into an error.
func PanicError(r interface{}) error {
	if err, ok := r.(error); ok {
		return &DashboardError{Message: "recovered panic", Cause: err}
	}
	return &DashboardError{Message: fmt.Sprintf("recovered panic: %v", r)}
}
