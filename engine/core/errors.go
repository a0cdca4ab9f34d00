package core

import (
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Binding errors
	ErrorCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrorCodeUnknownSymbol   ErrorCode = "UNKNOWN_SYMBOL"

	// CMake parsing errors
	ErrorCodeParseFailure ErrorCode = "PARSE_FAILURE"
	ErrorCodeFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrorCodeWriteFailed  ErrorCode = "WRITE_FAILED"

	// Extension module errors
	ErrorCodeModuleNameMismatch ErrorCode = "MODULE_NAME_MISMATCH"

	// Index store errors
	ErrorCodeStoreConnection ErrorCode = "NEO4J_CONNECTION_ERROR"
	ErrorCodeStoreWrite      ErrorCode = "STORE_WRITE_FAILED"

	// Describer errors
	ErrorCodeDescriberFailed ErrorCode = "DESCRIBER_FAILED"

	// Configuration errors
	ErrorCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Validation errors
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error represents a structured error with code and metadata
type Error struct {
	Err      error          `json:"error"`
	Code     ErrorCode      `json:"code"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewError creates a new structured error for domain boundaries
func NewError(err error, code ErrorCode, metadata map[string]any) *Error {
	return &Error{
		Err:      err,
		Code:     code,
		Metadata: metadata,
	}
}

// Errorf builds a structured error from a format string
func Errorf(code ErrorCode, metadata map[string]any, format string, args ...any) *Error {
	return NewError(fmt.Errorf(format, args...), code, metadata)
}

// Error implements the error interface
func (e *Error) Error() string {
	if len(e.Metadata) > 0 {
		return fmt.Sprintf("[%s] %v (metadata: %v)", e.Code, e.Err, e.Metadata)
	}
	return fmt.Sprintf("[%s] %v", e.Code, e.Err)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// CodeOf returns the code of the first structured error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Sentinel values for errors.Is comparisons
var (
	ErrInvalidArgument    = &Error{Code: ErrorCodeInvalidArgument}
	ErrUnknownSymbol      = &Error{Code: ErrorCodeUnknownSymbol}
	ErrParseFailure       = &Error{Code: ErrorCodeParseFailure}
	ErrFileNotFound       = &Error{Code: ErrorCodeFileNotFound}
	ErrInvalidInput       = &Error{Code: ErrorCodeInvalidInput}
	ErrModuleNameMismatch = &Error{Code: ErrorCodeModuleNameMismatch}
)
