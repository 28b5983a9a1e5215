package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Device input errors
	ErrInvalidIOCName     ErrorCode = "INVALID_IOC_NAME"
	ErrInvalidDeviceName  ErrorCode = "INVALID_DEVICE_NAME"
	ErrInvalidDeviceCount ErrorCode = "INVALID_DEVICE_COUNT"
	ErrInvalidTicket      ErrorCode = "INVALID_TICKET"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Template errors
	ErrTemplateNotFound      ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrTemplateManifest      ErrorCode = "TEMPLATE_MANIFEST"
	ErrUnresolvedPlaceholder ErrorCode = "UNRESOLVED_PLACEHOLDER"

	// Build-list errors
	ErrBuildVariableNotFound ErrorCode = "BUILD_VAR_NOT_FOUND"

	// External collaborator errors
	ErrExternalTool ErrorCode = "EXTERNAL_TOOL"
	ErrGitDirty     ErrorCode = "GIT_DIRTY"
	ErrGitOperation ErrorCode = "GIT_OPERATION"
	ErrGitHubAPI    ErrorCode = "GITHUB_API"
	ErrGUIRegistry  ErrorCode = "GUI_REGISTRY"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// GenError represents a structured error with code and details
type GenError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *GenError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *GenError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *GenError) Is(target error) bool {
	var targetErr *GenError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new GenError with the given code and message
func New(code ErrorCode, message string) *GenError {
	return &GenError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new GenError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *GenError {
	return &GenError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a GenError
func Wrap(err error, code ErrorCode, message string) *GenError {
	if err == nil {
		return nil
	}
	return &GenError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *GenError {
	if err == nil {
		return nil
	}
	return &GenError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *GenError) WithDetail(key string, value interface{}) *GenError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var genErr *GenError
	if errors.As(err, &genErr) {
		return genErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a GenError
func GetErrorCode(err error) ErrorCode {
	var genErr *GenError
	if errors.As(err, &genErr) {
		return genErr.Code
	}
	return ErrUnknown
}
