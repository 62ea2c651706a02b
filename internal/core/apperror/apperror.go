package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidArgument     Kind = "invalid_argument"
	KindValidationFailed    Kind = "validation_failed"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindConstraintViolation Kind = "constraint_violation"
	KindConnectionFailure   Kind = "connection_failure"
	KindInternal            Kind = "internal"
)

// Error is the typed failure shared by every layer. Fields is only set for
// KindValidationFailed and maps a request field to its first message.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Message != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if e.Message != "" {
		return e.Message
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}

	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrValidationFailed    = &Error{Kind: KindValidationFailed}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrConstraintViolation = &Error{Kind: KindConstraintViolation}
	ErrConnectionFailure   = &Error{Kind: KindConnectionFailure}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func InvalidArgument(msg string) *Error {
	return New(KindInvalidArgument, msg)
}

func NotFound(msg string) *Error {
	return New(KindNotFound, msg)
}

func Conflict(msg string) *Error {
	return New(KindConflict, msg)
}

func Validation(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidationFailed,
		Message: "Input validation failed.",
		Fields:  fields,
	}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error

	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
