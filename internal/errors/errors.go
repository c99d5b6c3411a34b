package errors

import (
	"fmt"
)

// SearchProxyError is the structured error type returned by every stage of
// the search pipeline. It carries enough context for logging, for deciding
// whether to retry, and for presenting a degraded-but-useful response to
// the caller when a partial result set is available.
type SearchProxyError struct {
	// Code is the unique error code (e.g., "ERR_302_BACKEND_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Kind is the error kind (Validation, Tokenization, SearchExecution, ...).
	Kind Kind

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string

	// FallbackUsed indicates a degraded code path (e.g. a fallback
	// tokenization engine or a fallback query variant) produced this result.
	FallbackUsed bool

	// PartialResults holds whatever results were gathered before the error
	// was raised, so a caller can still return something useful instead of
	// failing the whole request.
	PartialResults any
}

// Error implements the error interface.
func (e *SearchProxyError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchProxyError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with SearchProxyError.
func (e *SearchProxyError) Is(target error) bool {
	if t, ok := target.(*SearchProxyError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SearchProxyError) WithDetail(key, value string) *SearchProxyError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *SearchProxyError) WithSuggestion(suggestion string) *SearchProxyError {
	e.Suggestion = suggestion
	return e
}

// WithFallback marks the error as having been raised after a fallback path
// was already attempted.
func (e *SearchProxyError) WithFallback() *SearchProxyError {
	e.FallbackUsed = true
	return e
}

// WithPartialResults attaches whatever results were gathered before failure.
func (e *SearchProxyError) WithPartialResults(results any) *SearchProxyError {
	e.PartialResults = results
	return e
}

// New creates a new SearchProxyError with the given code and message.
// Kind, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *SearchProxyError {
	return &SearchProxyError{
		Code:      code,
		Message:   message,
		Kind:      kindFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SearchProxyError from an existing error.
// The error's message becomes the SearchProxyError message.
func Wrap(code string, err error) *SearchProxyError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigurationError creates a configuration-related error.
func ConfigurationError(message string, cause error) *SearchProxyError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// TokenizationError creates a tokenization-related error.
func TokenizationError(message string, cause error) *SearchProxyError {
	return New(ErrCodeTokenizerFailed, message, cause)
}

// SearchExecutionError creates a search-execution-related error.
func SearchExecutionError(message string, cause error) *SearchProxyError {
	return New(ErrCodeSearchFailed, message, cause)
}

// BackendUnavailableError creates a backend-unavailable error.
// Backend-unavailable errors are retryable.
func BackendUnavailableError(message string, cause error) *SearchProxyError {
	return New(ErrCodeBackendUnavailable, message, cause)
}

// RankingError creates a ranking-related error.
func RankingError(message string, cause error) *SearchProxyError {
	return New(ErrCodeRankingFailed, message, cause)
}

// TimeoutError creates a deadline-exceeded error.
func TimeoutError(message string, cause error) *SearchProxyError {
	return New(ErrCodeOverallTimeout, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *SearchProxyError {
	return New(ErrCodeInvalidQuery, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a SearchProxyError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if ae, ok := err.(*SearchProxyError); ok {
		return ae.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if ae, ok := err.(*SearchProxyError); ok {
		return ae.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a SearchProxyError.
// Returns empty string if not a SearchProxyError.
func GetCode(err error) string {
	if ae, ok := err.(*SearchProxyError); ok {
		return ae.Code
	}
	return ""
}

// GetKind extracts the kind from a SearchProxyError.
// Returns empty string if not a SearchProxyError.
func GetKind(err error) Kind {
	if ae, ok := err.(*SearchProxyError); ok {
		return ae.Kind
	}
	return ""
}

// GetPartialResults extracts partial results from a SearchProxyError, if any.
func GetPartialResults(err error) any {
	if ae, ok := err.(*SearchProxyError); ok {
		return ae.PartialResults
	}
	return nil
}
