// Package apperr defines the error kinds every service in this module reports.
//
// Services return either one of their package sentinels (built with New) or an
// error wrapping one, so callers can branch with errors.Is on the sentinel or
// with KindOf on the broad category.
package apperr

import (
	"context"
	"errors"
)

type Kind string

const (
	KindValidation          Kind = "validation_failed"
	KindNotFound            Kind = "not_found"
	KindInvalidState        Kind = "invalid_state"
	KindInvalidTransition   Kind = "invalid_transition"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindTransient           Kind = "transient"
	KindInternal            Kind = "internal"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Store classifies an error coming back from a backing store. Errors that
// already carry a kind pass through untouched; anything else is reported as
// transient so the caller knows a retry is safe.
func Store(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return Wrap(KindTransient, msg, err)
}

// KindOf returns the kind of the first *Error in err's chain. Context
// cancellation and deadlines count as transient.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindInternal
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// PublicMessage is the reason shown to callers. Transient and internal
// failures never expose the wrapped storage error.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindTransient:
		var ae *Error
		if errors.As(err, &ae) {
			return ae.Msg
		}
		return "temporarily unavailable, retry"
	case KindInternal:
		return "internal error"
	default:
		return err.Error()
	}
}
