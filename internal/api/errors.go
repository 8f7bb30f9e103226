package api

import (
	"errors"
	"fmt"
)

// ValidationError represents invalid operator input caught before any
// network call is made. It is non-retryable until the input changes.
//
// Every validation error carries a human-readable title/body pair so the
// surface layer never renders an empty message.
type ValidationError struct {
	// Field names the offending input field, when one can be identified
	// (e.g., "command", "url", "drafts").
	Field string

	// Message is the human-readable description of the violation.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidation checks if an error is a ValidationError using error
// unwrapping, so wrapped errors are recognized too.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// TransportError represents a request-level failure talking to the backend:
// connection refused, timeout, non-2xx status, undecodable body. It is
// retryable and does not corrupt pipeline state beyond the current stage.
type TransportError struct {
	// Operation is the backend operation that failed ("preview", "import",
	// "list_capabilities", "list_catalog").
	Operation string

	// StatusCode is the HTTP status, when one was received (0 otherwise).
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for TransportError.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed with status %d: %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport checks if an error is or wraps a TransportError.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// NewTransportError creates a TransportError for the given operation.
func NewTransportError(operation string, statusCode int, err error) *TransportError {
	return &TransportError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NotFoundError represents a missing resource (an unknown profile id, a
// catalog entry that disappeared between pages).
type NotFoundError struct {
	// ResourceType categorizes the missing resource ("profile", "entry").
	ResourceType string

	// ResourceName is the identifier that was not found.
	ResourceName string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a NotFoundError for the given resource.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}
