package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// Eligibility rules.
	ErrTooManyApplications = New("TOO_MANY_APPLICATIONS", http.StatusForbidden, "too many applications this quarter")
	ErrApplicationExists   = New("APPLICATION_EXISTS", http.StatusConflict, "application already exists")
	ErrInsufficientGrade   = New("INSUFFICIENT_GRADE", http.StatusForbidden, "grade is not sufficient")

	// Lifecycle rules.
	ErrCourseNotRecruiting = New("COURSE_NOT_RECRUITING", http.StatusConflict, "course no longer recruiting")
	ErrTANotSaved          = New("TA_NOT_SAVED", http.StatusConflict, "TA could not be saved")
	ErrApplicationApproved = New("APPLICATION_APPROVED", http.StatusConflict, "cannot withdraw an approved application")
	ErrInvalidTransition   = New("INVALID_TRANSITION", http.StatusConflict, "invalid status transition")
	ErrStaleApplication    = New("STALE_APPLICATION", http.StatusConflict, "application was modified concurrently")

	// Collaborator failures.
	ErrCommunication      = New("COMMUNICATION_ERROR", http.StatusBadGateway, "remote service unavailable")
	ErrNotificationFailed = New("NOTIFICATION_FAILED", http.StatusBadGateway, "status updated but notification could not be delivered")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// HasCode reports whether err (or anything it wraps) is an *Error carrying code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}
