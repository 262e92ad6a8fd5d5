// Package apperror defines the error kinds the HTTP layer knows how to map
// to status codes.
package apperror

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("unauthorized")
	ErrNotFound   = errors.New("not found")
)

// AppError pairs a kind with the message that is safe to show to clients.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation returns an error of kind ErrValidation.
func Validation(message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message}
}

// Conflict returns an error of kind ErrConflict.
func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// Auth returns an error of kind ErrAuth.
func Auth(message string) *AppError {
	return &AppError{Err: ErrAuth, Message: message}
}

// NotFound returns an error of kind ErrNotFound.
func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}
