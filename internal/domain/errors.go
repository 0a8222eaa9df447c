package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSummaryMismatch is returned by Reconcile when a breakdown and its clusters disagree.
var ErrSummaryMismatch = errors.New("summary does not reconcile with participant clusters")

// FieldError describes a problem with a single input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError rejects input before any fetch happens.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError from field errors.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FetchError wraps a failure of a record or summary collaborator.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
