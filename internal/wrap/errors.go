package wrap

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes wrapper errors.
type ErrorCode string

const (
	// ErrCodeNotCallable indicates a wrap target that cannot be invoked.
	ErrCodeNotCallable ErrorCode = "NOT_CALLABLE"

	// ErrCodeNotComposable indicates an attempt to wrap a *Wrapper directly.
	ErrCodeNotComposable ErrorCode = "NOT_COMPOSABLE"

	// ErrCodeUnsupportedArgumentType indicates a handle argument that is
	// neither an open handle nor a resource name.
	ErrCodeUnsupportedArgumentType ErrorCode = "UNSUPPORTED_ARGUMENT_TYPE"

	// ErrCodeArgumentBinding indicates call arguments that do not fit the
	// declared parameters.
	ErrCodeArgumentBinding ErrorCode = "ARGUMENT_BINDING"

	// ErrCodeNotProducer indicates a lazy-only operation on a wrapper whose
	// target returns a single value.
	ErrCodeNotProducer ErrorCode = "NOT_A_PRODUCER"
)

// Error is a wrapper construction or call-time failure.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Function names the wrapped function, if known.
	Function string

	// Param is the handle parameter or the offending argument name.
	Param string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var ctx []string
	if e.Function != "" {
		ctx = append(ctx, "function="+e.Function)
	}
	if e.Param != "" {
		ctx = append(ctx, "param="+e.Param)
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(ctx, ", "))
}

// ErrorCode returns the code as a plain string.
func (e *Error) ErrorCode() string {
	return string(e.Code)
}

// CodeOf returns the code of the first coded error in err's chain, or ""
// when there is none. It understands wrapper, signature and fileio errors.
func CodeOf(err error) string {
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

// IsNotCallable reports whether err rejects a wrap target.
func IsNotCallable(err error) bool {
	return hasCode(err, ErrCodeNotCallable)
}

// IsUnsupportedArgumentType reports whether err rejects a handle argument.
func IsUnsupportedArgumentType(err error) bool {
	return hasCode(err, ErrCodeUnsupportedArgumentType)
}

// IsArgumentBinding reports whether err rejects the call arguments.
func IsArgumentBinding(err error) bool {
	return hasCode(err, ErrCodeArgumentBinding)
}

func hasCode(err error, code ErrorCode) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Code == code
	}
	return false
}

func bindingError(format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeArgumentBinding,
		Message: fmt.Sprintf(format, args...),
	}
}
