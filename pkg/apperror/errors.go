package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for retry and transport mapping.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidState       Kind = "INVALID_STATE"
	KindConcurrencyLost    Kind = "CONCURRENCY_LOST"
	KindFinancialInvariant Kind = "FINANCIAL_INVARIANT"
	KindLockBusy           Kind = "LOCK_BUSY"
	KindValidation         Kind = "VALIDATION"
	KindInternal           Kind = "INTERNAL"
)

// Error is a business failure with a stable code.
type Error struct {
	Code    int
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on code so a sentinel compares equal to any re-worded copy.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the same request may succeed unchanged later.
func (e *Error) Retryable() bool {
	return e.Kind == KindLockBusy
}

// WithMessage returns a copy carrying a more specific message.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Code: e.Code, Kind: e.Kind, Message: fmt.Sprintf(format, args...), cause: e.cause}
}

// Wrap returns a copy that keeps cause in the chain.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Kind: e.Kind, Message: e.Message, cause: cause}
}

func New(code int, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// From extracts an *Error from err's chain.
func From(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if appErr, ok := From(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
