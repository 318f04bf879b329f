package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTransaction  = errors.New("transaction failed")
)

type (
	// NotFoundError indicates a referenced section, version or request is missing
	NotFoundError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// NewNotFound builds a NotFoundError for a resource type and id.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("%s %s not found", resource, id)}
}

// ValidationError indicates missing or malformed proposal fields.
// Fields maps a JSON field name to the reason it was rejected.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError represents a resource conflict with details about the existing resource.
// Raised for slug collisions and for attempts to resolve an already-resolved request.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (section, edit_request)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// TransactionError reports a failure inside the approval transaction.
// The transaction is rolled back, so the request is still pending.
type TransactionError struct {
	RequestID string
	Op        string
	Err       error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("approval of request %s failed during %s: %v (request remains pending)", e.RequestID, e.Op, e.Err)
}

func (e *TransactionError) StatusCode() int { return http.StatusInternalServerError }

func (e *TransactionError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrTransaction
func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }
