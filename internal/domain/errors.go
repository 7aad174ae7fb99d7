package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrRoomConflict          = errors.New("room booking conflict")
	ErrNotFound              = errors.New("not found")
	ErrTransport             = errors.New("notification transport failure")
	ErrConcurrentUpdate      = errors.New("record changed concurrently")
	ErrPersistence           = errors.New("could not save changes, please try again")
)

// ValidationError reports a structurally invalid submitted field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Ref identifies a resource by id and display name in caller-facing reports.
type Ref struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
