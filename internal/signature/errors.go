package signature

import (
	"errors"
	"fmt"
)

// ResolveErrorCode categorizes resolution failures.
type ResolveErrorCode string

const (
	// ErrCodeIndexOutOfRange indicates an integer specifier outside the
	// positional parameter list.
	ErrCodeIndexOutOfRange ResolveErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeUnknownParameter indicates a named specifier that matches no
	// declared parameter.
	ErrCodeUnknownParameter ResolveErrorCode = "UNKNOWN_PARAMETER"

	// ErrCodeInvalidSpecifierType indicates a specifier that is neither an
	// integer nor a string.
	ErrCodeInvalidSpecifierType ResolveErrorCode = "INVALID_SPECIFIER_TYPE"

	// ErrCodeInvalidSignature indicates a malformed parameter declaration
	// (empty or duplicate names).
	ErrCodeInvalidSignature ResolveErrorCode = "INVALID_SIGNATURE"
)

// ResolveError reports a specifier or signature that cannot be resolved.
type ResolveError struct {
	// Code identifies the error category.
	Code ResolveErrorCode

	// Message is a human-readable description.
	Message string

	// Specifier is the offending specifier, if any.
	Specifier any

	// Params is the number of positional parameters (for index errors).
	Params int
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if e.Specifier != nil {
		return fmt.Sprintf("%s: %s (specifier=%#v)", e.Code, e.Message, e.Specifier)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorCode returns the code as a plain string.
func (e *ResolveError) ErrorCode() string {
	return string(e.Code)
}

// IsIndexOutOfRange reports whether err is an index resolution failure.
func IsIndexOutOfRange(err error) bool {
	return hasCode(err, ErrCodeIndexOutOfRange)
}

// IsUnknownParameter reports whether err is an unknown name failure.
func IsUnknownParameter(err error) bool {
	return hasCode(err, ErrCodeUnknownParameter)
}

// IsInvalidSpecifierType reports whether err is a specifier type failure.
func IsInvalidSpecifierType(err error) bool {
	return hasCode(err, ErrCodeInvalidSpecifierType)
}

func hasCode(err error, code ResolveErrorCode) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func newIndexError(spec any, n int) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeIndexOutOfRange,
		Message:   fmt.Sprintf("argument list index out of range for %d positional parameters", n),
		Specifier: spec,
		Params:    n,
	}
}

func newUnknownError(name string) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeUnknownParameter,
		Message:   fmt.Sprintf("%q is not a declared parameter", name),
		Specifier: name,
	}
}

func newTypeError(spec any) *ResolveError {
	return &ResolveError{
		Code:      ErrCodeInvalidSpecifierType,
		Message:   fmt.Sprintf("specifier must be an integer or a string, got %T", spec),
		Specifier: spec,
	}
}
