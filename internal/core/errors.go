package core

import (
	"errors"
	"fmt"
)

// RuntimeErrorCode categorizes engine failures.
type RuntimeErrorCode string

const (
	// ErrCodeDecodeFailed indicates malformed event or response bytes.
	ErrCodeDecodeFailed RuntimeErrorCode = "DECODE_FAILED"

	// ErrCodeUnknownRequest indicates a response for an ID with no pending
	// continuation.
	ErrCodeUnknownRequest RuntimeErrorCode = "UNKNOWN_REQUEST"

	// ErrCodeUpdateFailed indicates the App or a continuation returned an error.
	ErrCodeUpdateFailed RuntimeErrorCode = "UPDATE_FAILED"

	// ErrCodeEncodeFailed indicates an effect batch or view could not be encoded.
	ErrCodeEncodeFailed RuntimeErrorCode = "ENCODE_FAILED"

	// ErrCodeQuotaExceeded indicates too many continuations would be pending.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"
)

// RuntimeError is an engine failure with structured context.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RequestID is the correlation ID involved, or 0.
	RequestID uint32

	// Event is the event name involved, if any.
	Event string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.RequestID != 0 && e.Event != "":
		msg = fmt.Sprintf("%s (request=%d, event=%s)", msg, e.RequestID, e.Event)
	case e.RequestID != 0:
		msg = fmt.Sprintf("%s (request=%d)", msg, e.RequestID)
	case e.Event != "":
		msg = fmt.Sprintf("%s (event=%s)", msg, e.Event)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is a RuntimeError with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsDecodeError returns true if err is a DECODE_FAILED error.
func IsDecodeError(err error) bool { return HasCode(err, ErrCodeDecodeFailed) }

// IsUnknownRequest returns true if err is an UNKNOWN_REQUEST error.
func IsUnknownRequest(err error) bool { return HasCode(err, ErrCodeUnknownRequest) }

// IsQuotaError returns true if err is a QUOTA_EXCEEDED error.
func IsQuotaError(err error) bool { return HasCode(err, ErrCodeQuotaExceeded) }

func newDecodeError(requestID uint32, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodeDecodeFailed, Message: "malformed message", RequestID: requestID, Err: err}
}

func newUnknownRequestError(requestID uint32) *RuntimeError {
	return &RuntimeError{Code: ErrCodeUnknownRequest, Message: "no pending continuation", RequestID: requestID}
}

func newUpdateError(requestID uint32, event string, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodeUpdateFailed, Message: "update failed", RequestID: requestID, Event: event, Err: err}
}

func newEncodeError(event string, err error) *RuntimeError {
	return &RuntimeError{Code: ErrCodeEncodeFailed, Message: "encode failed", Event: event, Err: err}
}

func newQuotaError(event string, pending, maxPending int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("pending continuations exceeded (%d > %d)", pending, maxPending),
		Event:   event,
	}
}
