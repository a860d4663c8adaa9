// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package errors maps application errors onto HTTP responses.
// Formatters are framework-agnostic: they take a *http.Request and an
// error and return status, content type, and body, leaving the caller
// to write the response.
package errors

import "net/http"

// Formatter converts an error into HTTP response components.
type Formatter interface {
	Format(req *http.Request, err error) Response
}

// Response holds everything needed to write an HTTP error response.
type Response struct {
	Status      int
	ContentType string
	Body        any
	Headers     http.Header
}

// ErrorType lets a domain error declare its own HTTP status.
type ErrorType interface {
	error
	HTTPStatus() int
}

// ErrorDetails lets a domain error expose structured, typically
// per-field, information.
type ErrorDetails interface {
	error
	Details() any
}

// ErrorCode lets a domain error expose a machine-readable code.
type ErrorCode interface {
	error
	Code() string
}

// NewRFC9457 builds an RFC 9457 problem+json formatter. baseURL is
// prepended to problem type slugs produced from an ErrorCode.
func NewRFC9457(baseURL string) *RFC9457 { return &RFC9457{BaseURL: baseURL} }

// NewJSONAPI builds a JSON:API error formatter.
func NewJSONAPI() *JSONAPI { return &JSONAPI{} }

// NewSimple builds a {"error", "details", "code"} formatter.
func NewSimple() *Simple { return &Simple{} }

// WithStatus wraps err so it satisfies ErrorType with the given status.
// err may be nil, in which case Error() returns the status text.
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error   { return e.err }
func (e *statusError) HTTPStatus() int { return e.status }
