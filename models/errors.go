package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error taxonomy. Handlers map them to status codes.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("report not found")
	ErrStorage      = errors.New("storage failure")
)

// ValidationError describes bad or missing input.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// AuthError describes failed credentials or a missing session.
type AuthError struct {
	Message string
}

func NewAuthError(msg string) *AuthError {
	return &AuthError{Message: msg}
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

// StorageError wraps a failure of the backing document or database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NotFound returns an error wrapping ErrNotFound for the given report id.
func NotFound(id string) error {
	return fmt.Errorf("report %q: %w", id, ErrNotFound)
}
