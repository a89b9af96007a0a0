package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeInitialization: the engine could not be opened or the stored
	// image is corrupt. Fatal; the caller must surface it to the user.
	ErrCodeInitialization ErrorCode = "INITIALIZATION"

	// ErrCodePersistenceWrite: saving the image to the slot failed. The
	// in-memory engine still holds the mutation and Flush may retry.
	ErrCodePersistenceWrite ErrorCode = "PERSISTENCE_WRITE"

	// ErrCodeQuery: the engine rejected a statement. Programming error.
	ErrCodeQuery ErrorCode = "QUERY"

	// ErrCodeCanceled: the caller's context ended before the engine was
	// ready. Nothing is wrong with the stored image; the call can be retried.
	ErrCodeCanceled ErrorCode = "CANCELED"

	// ErrCodeInvalidArgument: a caller passed an empty id or negative XP.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is the error type returned by Manager and Repository.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Op)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, op, message string, err error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsInitializationError reports whether err is an initialization failure.
func IsInitializationError(err error) bool {
	return CodeOf(err) == ErrCodeInitialization
}

// IsPersistenceError reports whether err is a failed slot write.
func IsPersistenceError(err error) bool {
	return CodeOf(err) == ErrCodePersistenceWrite
}

// IsQueryError reports whether err came from the engine rejecting a statement.
func IsQueryError(err error) bool {
	return CodeOf(err) == ErrCodeQuery
}

// IsInvalidArgument reports whether err is a rejected input.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrCodeInvalidArgument
}

// IsCanceled reports whether err is a wait cut short by the caller's context.
func IsCanceled(err error) bool {
	return CodeOf(err) == ErrCodeCanceled
}
