package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before reaching the store.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an identifier matches no record.
	ErrNotFound = errors.New("entry not found")
	// ErrStoreUnavailable wraps connection and query failures of the store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrExportAssembly wraps failures while rendering a report file.
	ErrExportAssembly = errors.New("export assembly failed")

	ErrInvalidAmount = errors.New("invalid amount")
)

// FieldError describes a single invalid field. It matches ErrValidation
// with errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}
