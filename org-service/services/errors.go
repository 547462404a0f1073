package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("organization not found")
	ErrExportDisabled = errors.New("export storage is not configured")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
