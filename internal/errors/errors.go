// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure the session store can observe is either a Validation error,
// produced locally before any network call, or a Request error carrying the
// HTTP status and the server-provided message when one was sent.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Validation indicates input rejected locally, without a network call.
	Validation Kind = "validation"
	// Request indicates a network or server failure.
	Request Kind = "request"
)

// E wraps an error with kind and human-friendly message.
// Status is the HTTP status code for Request errors, or 0 when the request
// never produced a response.
type E struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *E) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %d %s: %v", e.Kind, e.Status, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %d %s", e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

// Wrap returns an *E of the given kind around err.
func Wrap(kind Kind, msg string, err error) *E {
	return &E{Kind: kind, Message: msg, Err: err}
}

// New returns an *E of the given kind without a cause.
func New(kind Kind, msg string) *E {
	return &E{Kind: kind, Message: msg}
}

// RequestFailed builds a Request error for a response with the given status.
func RequestFailed(status int, msg string) *E {
	return &E{Kind: Request, Status: status, Message: msg}
}

// Is mirrors errors.Is so callers need a single import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As mirrors errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// IsKind reports whether any error in err's chain is an *E of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *E
	return stderrors.As(err, &e) && e.Kind == kind
}

// StatusOf returns the HTTP status recorded in err, or 0.
func StatusOf(err error) int {
	var e *E
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}

// MessageOr returns the message carried by err when it has one, otherwise fallback.
func MessageOr(err error, fallback string) string {
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
