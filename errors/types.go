package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound       ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid        ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation     ErrorCode = "CONFIG_VALIDATION"
	ErrCodeInstallationNotFound ErrorCode = "INSTALLATION_NOT_FOUND"
	ErrCodeTemplateModeUnknown  ErrorCode = "TEMPLATE_MODE_UNKNOWN"
	ErrCodeExecutableNotFound   ErrorCode = "COMMAND_NOT_FOUND"

	// Temp file errors
	ErrCodeMaterializationFailed ErrorCode = "MATERIALIZATION_FAILED"

	// Command execution errors
	ErrCodeCommandTimeout ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandFailed  ErrorCode = "COMMAND_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// PackerError represents a structured error with context
type PackerError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PackerError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *PackerError) WithDetail(key string, value interface{}) *PackerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *PackerError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new PackerError
func New(code ErrorCode, message string) *PackerError {
	return &PackerError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PackerError
func Wrap(err error, code ErrorCode, message string) *PackerError {
	return &PackerError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific PackerError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error. The outermost PackerError wins.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	packerErr, ok := err.(*PackerError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return packerErr.Code
}

// IsConfiguration reports whether err aborts a build because the job or
// installation configuration cannot be resolved.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeConfigValidation,
		ErrCodeInstallationNotFound, ErrCodeTemplateModeUnknown, ErrCodeExecutableNotFound:
		return true
	}
	return false
}

// IsMaterialization reports whether err came from writing a temp file.
func IsMaterialization(err error) bool {
	return GetCode(err) == ErrCodeMaterializationFailed
}

// IsExecution reports whether err came from launching or running packer.
func IsExecution(err error) bool {
	switch GetCode(err) {
	case ErrCodeCommandFailed, ErrCodeCommandTimeout:
		return true
	}
	return false
}
