package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by services and transports.
const (
	CodeAuthenticationFailed       = "AUTHENTICATION_FAILED"
	CodeValidationFailed           = "VALIDATION_FAILED"
	CodeExternalServiceUnavailable = "EXTERNAL_SERVICE_UNAVAILABLE"
	CodeNotFound                   = "NOT_FOUND"
	CodeInvalidTransition          = "INVALID_TRANSITION"
	CodeUnauthorized               = "UNAUTHORIZED"
	CodeForbidden                  = "FORBIDDEN"
	CodeConflict                   = "CONFLICT"
	CodeInternal                   = "INTERNAL_ERROR"
)

// Sentinels for errors.Is; matching compares codes only.
var (
	ErrAuthenticationFailed       = &DomainError{Code: CodeAuthenticationFailed}
	ErrValidationFailed           = &DomainError{Code: CodeValidationFailed}
	ErrExternalServiceUnavailable = &DomainError{Code: CodeExternalServiceUnavailable}
	ErrNotFound                   = &DomainError{Code: CodeNotFound}
	ErrInvalidTransition          = &DomainError{Code: CodeInvalidTransition}
	ErrUnauthorized               = &DomainError{Code: CodeUnauthorized}
	ErrForbidden                  = &DomainError{Code: CodeForbidden}
	ErrConflict                   = &DomainError{Code: CodeConflict}
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
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewAuthenticationFailed(message string) error {
	return NewDomainError(CodeAuthenticationFailed, message, http.StatusUnauthorized, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

// NewExternalServiceUnavailable wraps a failed call to an outside collaborator.
func NewExternalServiceUnavailable(service string, err error) error {
	return &DomainError{
		Code:       CodeExternalServiceUnavailable,
		Message:    fmt.Sprintf("%s unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"service": service},
		Err:        err,
	}
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

func NewInvalidTransition(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidTransition, message, http.StatusConflict, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
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
		if domainErr.HTTPStatus == 0 {
			copied := *domainErr
			copied.HTTPStatus = statusForCode(copied.Code)
			return &copied
		}
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts any error into a DomainError while preserving nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

func statusForCode(code string) int {
	switch code {
	case CodeAuthenticationFailed, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeValidationFailed:
		return http.StatusBadRequest
	case CodeExternalServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
