package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrBusinessRule indicates that well-formed input violates an accounting rule,
// such as unbalanced lines or a payable account posted against a customer.
var ErrBusinessRule = errors.New("business rule violation")

// ErrCapacityExceeded indicates that a batch cannot accept more entries or referenced entities.
var ErrCapacityExceeded = errors.New("batch capacity exceeded")

// ErrNotLoaded indicates that a reference cache lookup happened before the cache was populated.
var ErrNotLoaded = errors.New("reference cache not loaded")

// ErrExternalService indicates that the remote ledger service rejected an operation.
var ErrExternalService = errors.New("external service error")

// ErrProtocolViolation indicates that the remote ledger service returned a batch
// response set missing an item that was submitted.
var ErrProtocolViolation = errors.New("batch protocol violation")

// ErrTimeout indicates that a remote call did not complete within its deadline.
var ErrTimeout = errors.New("remote call timed out")

// ErrInternal indicates an unexpected failure in infrastructure code.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
