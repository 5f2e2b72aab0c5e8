// Package errors provides the error kinds used across the nomora backend.
// Errors carry enough context (file, row, column) to point an operator at
// the offending input.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for use with errors.Is().
var (
	// ErrDataset indicates a malformed or unreadable dataset.
	ErrDataset = errors.New("dataset error")
	// ErrNotFound indicates a dish or ingredient lookup failed.
	ErrNotFound = errors.New("not found")
	// ErrConfig indicates an invalid configuration value.
	ErrConfig = errors.New("configuration error")
	// ErrModel indicates the language model could not produce an answer.
	ErrModel = errors.New("model error")
	// ErrNotLoaded indicates no dataset snapshot is available yet.
	ErrNotLoaded = errors.New("data not loaded")
)

// DataError describes a failure while reading one of the datasets.
type DataError struct {
	// File is the dataset name or path.
	File string
	// Row is the 1-based data row (header excluded). Zero when not row specific.
	Row int
	// Column is the header the failure relates to, if any.
	Column string
	// Message is the human-readable description.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *DataError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.File)
	if e.Row > 0 {
		sb.WriteString(fmt.Sprintf(": row %d", e.Row))
	}
	if e.Column != "" {
		sb.WriteString(fmt.Sprintf(": column %q", e.Column))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *DataError) Unwrap() error {
	return e.Cause
}

// Is makes every DataError match ErrDataset.
func (e *DataError) Is(target error) bool {
	return target == ErrDataset
}

// NewDataError creates a DataError for a file-level failure.
func NewDataError(file, message string, cause error) *DataError {
	return &DataError{File: file, Message: message, Cause: cause}
}

// MissingColumn reports a required header that is absent.
func MissingColumn(file, column string) *DataError {
	return &DataError{File: file, Column: column, Message: "missing required column"}
}

// BadValue reports a cell that could not be parsed.
func BadValue(file string, row int, column string, cause error) *DataError {
	return &DataError{File: file, Row: row, Column: column, Message: "invalid value", Cause: cause}
}

// NotFound wraps ErrNotFound with the kind and name that was looked up.
func NotFound(kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

// ConfigInvalid wraps ErrConfig for a bad configuration field.
func ConfigInvalid(field, message string, validOptions ...string) error {
	msg := fmt.Sprintf("%s: %s", field, message)
	if len(validOptions) > 0 {
		msg += fmt.Sprintf(" (valid options: %s)", strings.Join(validOptions, ", "))
	}
	return fmt.Errorf("%s: %w", msg, ErrConfig)
}
