package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that must react differently to each case
type Kind string

const (
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
	KindAuthExpired Kind = "auth_expired"
	KindTransient   Kind = "transient"
	KindNotFound    Kind = "not_found"
)

// Error is the error type shared by the domain, client and service layers
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a local, pre-submission failure. It never reaches the network.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports an upstream 409
func Conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// AuthExpired reports a 401 that survived a refresh attempt, or a failed refresh
func AuthExpired(err error) error {
	return &Error{Kind: KindAuthExpired, Message: "session expired", Err: err}
}

// Transient reports any other network or server failure
func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Message: msg, Err: err}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// As returns the *Error in err's chain, if any
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" for errors outside the taxonomy
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsConflict(err error) bool    { return KindOf(err) == KindConflict }
func IsAuthExpired(err error) bool { return KindOf(err) == KindAuthExpired }
func IsTransient(err error) bool   { return KindOf(err) == KindTransient }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }
