package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers. Each maps 1:1 to a localized message in
// the presentation layer.
const (
	CodeForbidden         = "FORBIDDEN"
	CodeOutOfRange        = "OUT_OF_RANGE"
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeMaintenanceMode   = "MAINTENANCE_MODE"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationFailed reports payload validation failures. Details carries
// every failing field simultaneously, keyed by field name.
func NewValidationFailed(message string, fieldErrors map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, fieldErrors)
}

// NewForbidden reports a denied permission check.
func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewOutOfRange reports a failed geofence precondition.
func NewOutOfRange(distanceMeters, radiusMeters float64) error {
	return NewDomainError(CodeOutOfRange, "actor outside the allowed site radius", http.StatusUnprocessableEntity, map[string]any{
		"distance_meters": distanceMeters,
		"radius_meters":   radiusMeters,
	})
}

// NewInvalidTransition reports a status change not adjacent in the state machine.
func NewInvalidTransition(from, to string) error {
	return NewDomainError(CodeInvalidTransition, fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusConflict, map[string]any{
		"from": from,
		"to":   to,
	})
}

// NewMaintenanceMode reports that new work is not admitted.
func NewMaintenanceMode() error {
	return NewDomainError(CodeMaintenanceMode, "maintenance mode active; no new work admitted", http.StatusServiceUnavailable, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given domain error code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

func MapError(err error) error {
	return ToDomainError(err)
}
