package instant

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes instant errors.
type ErrorCode string

const (
	// CodeInvalidInstant indicates nanos out of range, or an Instant whose
	// seconds do not fit the calendar range of time.Time.
	CodeInvalidInstant ErrorCode = "INVALID_INSTANT"

	// CodeInvalidTime indicates a time.Time that can not be represented as an
	// Instant (before the Unix epoch).
	CodeInvalidTime ErrorCode = "INVALID_TIME"
)

// Error is a value-level instant error. Callers handle it as an ordinary
// result; it never indicates a broken process.
type Error struct {
	Code    ErrorCode
	Message string
}

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrInvalidInstant = &Error{Code: CodeInvalidInstant}
	ErrInvalidTime    = &Error{Code: CodeInvalidTime}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so wrapped errors compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// IsInvalidInstant returns true if err is an INVALID_INSTANT error.
func IsInvalidInstant(err error) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code == CodeInvalidInstant
	}
	return false
}

// IsInvalidTime returns true if err is an INVALID_TIME error.
func IsInvalidTime(err error) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code == CodeInvalidTime
	}
	return false
}

func invalidInstant(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidInstant, Message: fmt.Sprintf(format, args...)}
}

func invalidTime(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidTime, Message: fmt.Sprintf(format, args...)}
}
