package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors. Use errors.Is() to check these; the typed errors below
// unwrap to them.
var (
	// ErrValidation indicates malformed or missing input at the store boundary.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates an operation referenced an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrQuantityOutOfRange indicates a requested quantity outside 0..available.
	ErrQuantityOutOfRange = errors.New("quantity out of range")

	// ErrStorageUnavailable indicates the store could not be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError lists the offending fields and a message for each.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// QuantityOutOfRangeError names the item and the quantities involved.
type QuantityOutOfRangeError struct {
	ItemID    int64
	Requested int
	Available int
}

func (e *QuantityOutOfRangeError) Error() string {
	return fmt.Sprintf("quantity out of range for item %d: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

func (e *QuantityOutOfRangeError) Unwrap() error { return ErrQuantityOutOfRange }
