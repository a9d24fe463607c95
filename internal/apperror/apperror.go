// Package apperror defines the error taxonomy shared by every operation.
// Operations convert these into structured results at their boundary.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and HTTP mapping.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindAuthorization   Kind = "AUTHORIZATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindConfiguration   Kind = "CONFIGURATION_ERROR"
	KindBusy            Kind = "BUSY"
	KindOperationFailed Kind = "OPERATION_FAILED"
)

// Error is a classified error with an optional operation name and cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func Authorization(format string, args ...interface{}) *Error {
	return newf(KindAuthorization, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Configuration(format string, args ...interface{}) *Error {
	return newf(KindConfiguration, format, args...)
}

func Busy(format string, args ...interface{}) *Error {
	return newf(KindBusy, format, args...)
}

// Failed wraps an uncategorized cause.
func Failed(err error, format string, args ...interface{}) *Error {
	e := newf(KindOperationFailed, format, args...)
	e.Err = err
	return e
}

// WithOp returns a copy of e tagged with the operation name.
func (e *Error) WithOp(op string) *Error {
	cp := *e
	cp.Op = op
	return &cp
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, OperationFailed for unclassified errors
// and the empty kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindOperationFailed
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message of err without the operation prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		if appErr.Kind == KindOperationFailed {
			if appErr.Message != "" {
				return appErr.Message
			}
			return "operation failed"
		}
		if appErr.Message != "" {
			return appErr.Message
		}
	}
	return "operation failed"
}
