package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound  ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG_INVALID"
	ErrCodeVariantNotFound ErrorCode = "VARIANT_NOT_FOUND"

	// Page errors
	ErrCodePageNotFound ErrorCode = "PAGE_NOT_FOUND"
	ErrCodePageParse    ErrorCode = "PAGE_PARSE"
	ErrCodeWriteFailed  ErrorCode = "WRITE_FAILED"

	// General errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// PortalError represents a structured error with context
type PortalError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PortalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PortalError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *PortalError) WithDetail(key string, value interface{}) *PortalError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *PortalError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new PortalError
func New(code ErrorCode, message string) *PortalError {
	return &PortalError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PortalError
func Wrap(err error, code ErrorCode, message string) *PortalError {
	return &PortalError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific PortalError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	portalErr, ok := err.(*PortalError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return portalErr.Code
}
