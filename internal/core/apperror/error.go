// Package apperror provides the structured error type shared by the composer packages.
package apperror

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeInternal = "INTERNAL_ERROR"
	CodeNotFound = "NOT_FOUND"

	// Catalog references a type it does not define
	CodeSchemaInconsistency = "SCHEMA_INCONSISTENCY"

	// Rejected by the connection validator
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"

	// Graph bookkeeping would become inconsistent
	CodeInvariant = "INVARIANT_VIOLATION"

	CodeMalformedMetadata = "MALFORMED_METADATA"
	CodeValidation        = "VALIDATION_ERROR"
)

// AppError is the standard error type for the composer.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (ids, type keys, field errors)
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewNotFound creates a not found error
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", entity),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// NewSchemaInconsistency reports a reference to an entity type the catalog lacks
func NewSchemaInconsistency(typeKey string) *AppError {
	return &AppError{
		Code:    CodeSchemaInconsistency,
		Message: fmt.Sprintf("entity type %q is not defined in the catalog", typeKey),
		Details: map[string]any{"type": typeKey},
	}
}

// NewConstraintViolation creates an error for a gesture the validator rejected
func NewConstraintViolation(message string) *AppError {
	return &AppError{
		Code:    CodeConstraintViolation,
		Message: message,
	}
}

// NewInvariant creates an error for an operation that would corrupt the graph
func NewInvariant(message string) *AppError {
	return &AppError{
		Code:    CodeInvariant,
		Message: message,
	}
}

// NewMalformedMetadata wraps a layout metadata decoding failure
func NewMalformedMetadata(err error) *AppError {
	return &AppError{
		Code:    CodeMalformedMetadata,
		Message: "layout metadata could not be decoded",
		Err:     err,
	}
}

// NewValidation creates a validation error
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewInternal wraps an unexpected error
func NewInternal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsConstraintViolation checks if error is CodeConstraintViolation
func IsConstraintViolation(err error) bool {
	return HasCode(err, CodeConstraintViolation)
}

// IsInvariant checks if error is CodeInvariant
func IsInvariant(err error) bool {
	return HasCode(err, CodeInvariant)
}
