// Package domain defines the error taxonomy shared by the query engine, the
// translation layer and the HTTP handlers.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ValidationError indicates malformed user input: identifiers, aggregate
// expressions, filters, limit or sort order.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates an unknown dataset, chart, dashboard or comment id.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// PermissionDeniedError covers ownership, sharing and role-table violations.
type PermissionDeniedError struct {
	Message string
}

func (e *PermissionDeniedError) Error() string { return e.Message }

// QueryExecutionError wraps a warehouse or catalog driver failure. Op names the
// failing step; the wrapped error is logged but never returned to the caller.
type QueryExecutionError struct {
	Op  string
	Err error
}

func (e *QueryExecutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("query execution failed: %s", e.Op)
	}
	return fmt.Sprintf("query execution failed: %s: %v", e.Op, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// TranslationError reports a failed generative-model call or an unparseable answer.
type TranslationError struct {
	Message string
	Err     error
}

func (e *TranslationError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// AuthError is a rejected credential.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// LockedError is returned while an account sits in its failed-login window.
type LockedError struct {
	Username   string
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account %s is locked, retry in %s", e.Username, e.RetryAfter.Round(time.Second))
}

// ConflictError indicates a duplicate resource.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func ErrPermissionDenied(format string, args ...interface{}) *PermissionDeniedError {
	return &PermissionDeniedError{Message: fmt.Sprintf(format, args...)}
}

func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func ErrAuth(format string, args ...interface{}) *AuthError {
	return &AuthError{Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error of the taxonomy to its HTTP status code. Anything
// unrecognised is a 500.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var deniedErr *PermissionDeniedError
	var authErr *AuthError
	var lockedErr *LockedError
	var conflictErr *ConflictError
	var translationErr *TranslationError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &deniedErr):
		return http.StatusForbidden
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &lockedErr):
		return http.StatusTooManyRequests
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &translationErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to hand back to a client. Execution and
// unknown errors collapse to a generic text so SQL and driver details stay in the logs.
func PublicMessage(err error) string {
	var execErr *QueryExecutionError
	var translationErr *TranslationError
	switch {
	case errors.As(err, &execErr):
		return "failed to execute query"
	case errors.As(err, &translationErr):
		return translationErr.Message
	}
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
