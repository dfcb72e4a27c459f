// Package apperrors defines the error taxonomy shared by all storage backends
// and HTTP controllers.
//
// Storage operations return one of the typed errors below for expected failure
// modes; anything else is treated as an internal error. Controllers map the
// types to HTTP status codes (400/404/409) and never expose internal error
// details to clients.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError indicates missing or malformed input, including business
// rejections such as checking out an unavailable book.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates that a referenced record does not exist, or that a
// listing which requires at least one row came back empty.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError indicates a duplicate unique key, such as an already
// registered ISBN or email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
