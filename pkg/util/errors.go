// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the parse error taxonomy
var (
	ErrStructural         = errors.New("unexpected response structure")
	ErrFieldFormat        = errors.New("malformed field")
	ErrValidationFailed   = errors.New("validation failed")
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// StructuralError reports a response whose line/element count or fixed
// header layout does not match what the dialect requires.
type StructuralError struct {
	Dialect string
	Detail  string
}

func (e *StructuralError) Error() string {
	if e.Dialect == "" {
		return "structural error: " + e.Detail
	}
	return fmt.Sprintf("%s: structural error: %s", e.Dialect, e.Detail)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// NewStructuralError creates a structural error
func NewStructuralError(dialect, format string, args ...interface{}) *StructuralError {
	return &StructuralError{
		Dialect: dialect,
		Detail:  fmt.Sprintf(format, args...),
	}
}

// FieldFormatError represents a single field value that does not match its
// micro-grammar (duration, AS path, path summary token, ...)
type FieldFormatError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldFormatError) Error() string {
	msg := fmt.Sprintf("malformed %s %q", e.Field, e.Value)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *FieldFormatError) Unwrap() error {
	return ErrFieldFormat
}

// NewFieldFormatError creates a new field format error
func NewFieldFormatError(field, value, reason string) *FieldFormatError {
	return &FieldFormatError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddError adds an error message unconditionally
func (v *ValidationBuilder) AddError(message string) *ValidationBuilder {
	v.errors = append(v.errors, message)
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// ErrorKind names the taxonomy bucket of err for diagnostics:
// "structural", "field_format", "validation", "unsupported_dialect" or
// "internal" for anything else.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrStructural):
		return "structural"
	case errors.Is(err, ErrFieldFormat):
		return "field_format"
	case errors.Is(err, ErrValidationFailed):
		return "validation"
	case errors.Is(err, ErrUnsupportedDialect):
		return "unsupported_dialect"
	default:
		return "internal"
	}
}
