package fileio

import (
	"errors"
	"fmt"
)

// OptionErrorCode categorizes option validation failures.
type OptionErrorCode string

const (
	// ErrCodeInvalidOption indicates an option key open() does not accept.
	ErrCodeInvalidOption OptionErrorCode = "INVALID_OPTION"

	// ErrCodeInvalidOptionValue indicates a recognized key with an
	// unusable value.
	ErrCodeInvalidOptionValue OptionErrorCode = "INVALID_OPTION_VALUE"
)

// OptionError reports an invalid open option.
type OptionError struct {
	Code    OptionErrorCode
	Message string

	// Option is the offending key.
	Option string

	// Value is the offending value (value errors only).
	Value any
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	return fmt.Sprintf("%s: %s (option=%s)", e.Code, e.Message, e.Option)
}

// ErrorCode returns the code as a plain string.
func (e *OptionError) ErrorCode() string {
	return string(e.Code)
}

// IsInvalidOption reports whether err rejects an unknown option key.
func IsInvalidOption(err error) bool {
	var oe *OptionError
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeInvalidOption
	}
	return false
}

// IsInvalidOptionValue reports whether err rejects an option value.
func IsInvalidOptionValue(err error) bool {
	var oe *OptionError
	if errors.As(err, &oe) {
		return oe.Code == ErrCodeInvalidOptionValue
	}
	return false
}

func newUnknownOptionError(key string) *OptionError {
	return &OptionError{
		Code:    ErrCodeInvalidOption,
		Message: fmt.Sprintf("%q is not a valid argument for open", key),
		Option:  key,
	}
}

func newValueError(key string, value any, reason string) *OptionError {
	return &OptionError{
		Code:    ErrCodeInvalidOptionValue,
		Message: fmt.Sprintf("%s=%#v: %s", key, value, reason),
		Option:  key,
		Value:   value,
	}
}
