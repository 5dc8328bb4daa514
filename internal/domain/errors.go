package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindPersistenceFailed
	KindRenderFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindPersistenceFailed:
		return "PERSISTENCE_FAILED"
	case KindRenderFailed:
		return "RENDER_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Error is the error type surfaced by use cases. Kind decides how callers
// react; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation        = &Error{Kind: KindValidation, Message: "validation error"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "not found"}
	ErrPersistenceFailed = &Error{Kind: KindPersistenceFailed, Message: "persistence failed"}
	ErrRenderFailed      = &Error{Kind: KindRenderFailed, Message: "render failed"}
)

func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewPersistenceError(message string, err error) error {
	return &Error{Kind: KindPersistenceFailed, Message: message, Err: err}
}

func NewRenderError(message string, err error) error {
	return &Error{Kind: KindRenderFailed, Message: message, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
