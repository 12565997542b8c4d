// Package errors provides a lightweight structured error type (PostBuildError)
// for category-based classification used by the orchestrator and the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a post-build error for classification
type ErrorCategory string

const (
	// User-facing configuration errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Artifact errors
	CategoryArtifactRead  ErrorCategory = "artifact_read"
	CategoryArtifactParse ErrorCategory = "artifact_parse"

	// Downstream task errors (image generation, index publication)
	CategoryDownstream ErrorCategory = "downstream"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryNetwork    ErrorCategory = "network"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal ErrorSeverity = "fatal" // Stops execution
	SeverityError ErrorSeverity = "error" // Fails one task, the run continues
)

// PostBuildError is a structured error with category, retryability, and context
type PostBuildError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PostBuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *PostBuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *PostBuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *PostBuildError) WithContext(key string, value any) *PostBuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PostBuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *PostBuildError {
	return &PostBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new PostBuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PostBuildError {
	return &PostBuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable PostBuildError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *PostBuildError {
	return &PostBuildError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// As extracts the outermost PostBuildError from an error chain.
func As(err error) (*PostBuildError, bool) {
	var pbe *PostBuildError
	if stderrors.As(err, &pbe) {
		return pbe, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if pbe, ok := As(err); ok {
		return pbe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if pbe, ok := As(err); ok {
		return pbe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a PostBuildError
func GetCategory(err error) ErrorCategory {
	if pbe, ok := As(err); ok {
		return pbe.Category
	}
	return CategoryInternal
}
