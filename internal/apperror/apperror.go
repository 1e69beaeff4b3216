// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperror defines the request error taxonomy and its mapping to
// HTTP status codes. Handlers return these; the JSON layer renders them.
package apperror

import "net/http"

// Kind classifies a request failure.
type Kind int

// Error kinds, each with a fixed HTTP status.
const (
	KindValidation Kind = iota // malformed or out-of-schema input
	KindAuth                   // bad credentials or missing session
	KindForbidden              // authenticated but not allowed
	KindConflict               // duplicate signup
	KindPolicy                 // weak password
	KindNotFound               // unknown target for admin actions
	KindRateLimit              // request budget exceeded
	KindInternal               // persistence or hash failure; logged, opaque
)

// Error is a typed request failure. Fields carries per-field validation
// messages when the kind is KindValidation.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// Status returns the HTTP status code for the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindPolicy:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-readable error code for the error's kind.
func (e *Error) Code() string {
	switch e.Kind {
	case KindValidation:
		return "validation_error"
	case KindAuth:
		return "auth_error"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindPolicy:
		return "policy_error"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "internal_error"
	}
}

// Validation creates a 400 error with optional per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Auth creates a 401 error.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Conflict creates a 409 error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Policy creates a 422 error.
func Policy(message string) *Error {
	return &Error{Kind: KindPolicy, Message: message}
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// RateLimit creates a 429 error.
func RateLimit(message string) *Error {
	return &Error{Kind: KindRateLimit, Message: message}
}

// Internal creates a 500 error wrapping its cause. The cause is logged but
// never exposed to the client.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", err: cause}
}
