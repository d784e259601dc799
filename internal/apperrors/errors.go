package apperrors

import (
	"errors"
	"fmt"
)

// Error method implementation for ValidationError
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Error method implementation for MigrationError
func (e *MigrationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/errors.As
func (e *MigrationError) Unwrap() error {
	return e.Cause
}

// Error method implementation for StorageError
func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/errors.As
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, cause error) *MigrationError {
	return &MigrationError{
		Message: message,
		Cause:   cause,
	}
}

// NewStorageError creates a new StorageError
func NewStorageError(message string, cause error) *StorageError {
	return &StorageError{
		Message: message,
		Cause:   cause,
	}
}

// IsMigrationError reports whether err is (or wraps) a MigrationError
func IsMigrationError(err error) bool {
	var me *MigrationError
	return errors.As(err, &me)
}
