package ledger

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes ledger rejections.
type ErrorCode string

const (
	// ErrCodeDuplicateTransition indicates a second open or second close
	// recorded for the same call.
	ErrCodeDuplicateTransition ErrorCode = "DUPLICATE_TRANSITION"

	// ErrCodeOrphanClose indicates a close recorded for a call that was
	// never opened.
	ErrCodeOrphanClose ErrorCode = "ORPHAN_CLOSE"

	// ErrCodeUnrecordedState indicates an event whose state is not stored.
	ErrCodeUnrecordedState ErrorCode = "UNRECORDED_STATE"
)

// Error is a rejected ledger write.
type Error struct {
	Code   ErrorCode
	CallID string
	State  string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: call %s state %s", e.Code, e.CallID, e.State)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the driver error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code as a plain string.
func (e *Error) ErrorCode() string {
	return string(e.Code)
}

// IsDuplicateTransition reports whether err is a repeated open or close.
func IsDuplicateTransition(err error) bool {
	return hasCode(err, ErrCodeDuplicateTransition)
}

// IsOrphanClose reports whether err is a close without an open.
func IsOrphanClose(err error) bool {
	return hasCode(err, ErrCodeOrphanClose)
}

func hasCode(err error, code ErrorCode) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}
