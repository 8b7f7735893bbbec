package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeInvalidParam    = "INVALID_PARAMETER"
	ErrCodeMissingField    = "MISSING_FIELD"
	ErrCodeInvalidQuantity = "INVALID_QUANTITY"
	ErrCodeEmptyOrder      = "EMPTY_ORDER"
	ErrCodeInvalidStatus   = "INVALID_STATUS"
	ErrCodeOrderNotFound   = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound = "PRODUCT_NOT_FOUND"
	ErrCodeUnauthorised    = "UNAUTHORIZED"
	ErrCodePersistence     = "PERSISTENCE_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidStatus   = NewDomainError(ErrCodeInvalidStatus, "Status must be one of ordered, confirmed, shipped, delivered, cancelled")
)

// ValidationError reports a caller-fixable problem with a submission.
// Index is the zero-based item position, or -1 when the error concerns the
// request as a whole.
type ValidationError struct {
	Code    string
	Field   string
	Index   int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: %s", e.Index, e.Message)
	}
	return e.Message
}

// NewValidationError creates a validation error for the item at index.
func NewValidationError(code, field string, index int, message string) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Index:   index,
		Message: message,
	}
}

// PersistenceError reports that the order store was unreachable or rejected
// a write. Index is the zero-based item position within a bulk submission.
type PersistenceError struct {
	Op    string
	Index int
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s (item %d): %v", e.Op, e.Index, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is, or wraps, a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
