// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import "errors"

// Sentinel errors returned by the router and engine context. Callers should
// compare with errors.Is since some are wrapped with additional detail.
var (
	// ErrRouteConflict is returned from Insert when a pattern already has a
	// terminal route registered for the same method.
	ErrRouteConflict = errors.New("router: duplicate route for method and pattern")

	// ErrRouteNotFound names the no-match outcome. resolve reports it as a
	// nil match, and no function in the module returns this error.
	ErrRouteNotFound = errors.New("router: no matching route")

	// ErrMethodNotAllowed is returned when a path matches under other
	// methods. Callers should use *MethodNotAllowedError for the Allow set.
	ErrMethodNotAllowed = errors.New("router: method not allowed")

	// ErrInvalidPattern is returned when a route pattern fails to parse.
	ErrInvalidPattern = errors.New("router: invalid route pattern")

	// ErrUnknownConstraint is returned when a typed parameter names a
	// constraint the router does not recognize.
	ErrUnknownConstraint = errors.New("router: unknown parameter constraint")

	// ErrMissingParam is returned by Context.ParamInt, and is the panic
	// value of Context.MustParam, when a named parameter was not bound for
	// the current route.
	ErrMissingParam = errors.New("router: missing route parameter")

	// ErrParamType is returned when a typed parameter accessor cannot
	// convert the bound string value.
	ErrParamType = errors.New("router: parameter type mismatch")

	// ErrNamedRoute is returned by url() when the name is unknown or a
	// required parameter is missing from the supplied values.
	ErrNamedRoute = errors.New("router: named route error")

	// ErrAlreadyBuilt is the error route registration fails with after
	// Build has frozen the router. Use panics with a message of its own
	// instead, and Group does not check.
	ErrAlreadyBuilt = errors.New("router: operation not allowed after build")

	// ErrNotBuilt names serving before Build. No function in the module
	// returns it.
	ErrNotBuilt = errors.New("router: Build must be called before serving")

	// ErrBindingNil names a nil bind* destination. No function in the
	// module returns it.
	ErrBindingNil = errors.New("router: bind destination is nil")

	// ErrBindingNotPointer names a bind* destination that is not a non-nil
	// pointer. No function in the module returns it.
	ErrBindingNotPointer = errors.New("router: bind destination must be a non-nil pointer")

	// ErrUnsupportedMediaType is returned when a bind* call cannot find a
	// decoder for the request's Content-Type.
	ErrUnsupportedMediaType = errors.New("router: unsupported content type")

	// ErrBodyTooLarge is returned when a request body exceeds the
	// configured maximum.
	ErrBodyTooLarge = errors.New("router: request body too large")

	// ErrPreconditionFailed signals a 412 outcome from conditional
	// evaluation.
	ErrPreconditionFailed = errors.New("router: precondition failed")

	// ErrNoRepresentation signals If-Match: * with no current
	// representation to match against.
	ErrNoRepresentation = errors.New("router: no current representation")

	// ErrResponseWriterNotHijacker is returned when Hijack is called on a
	// ResponseWriter that does not support it.
	ErrResponseWriterNotHijacker = errors.New("router: response writer does not support hijacking")

	// ErrShutdownInProgress names a request refused because the engine has
	// begun draining. No function in the module returns it.
	ErrShutdownInProgress = errors.New("router: shutdown in progress")
)

// MethodNotAllowedError carries the set of methods registered for a path
// that failed to match only because of its HTTP method.
type MethodNotAllowedError struct {
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return "router: method not allowed"
}

func (e *MethodNotAllowedError) Unwrap() error { return ErrMethodNotAllowed }

// HTTPStatus satisfies the errors package's ErrorType marker interface so
// the default error-handler middleware maps this directly to 405 without a
// resolver lookup.
func (e *MethodNotAllowedError) HTTPStatus() int { return 405 }

// ValidationError carries per-field messages produced by bind* and the
// validation package.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "router: validation failed"
}

// FieldErrors returns Fields itself, keyed by field path; its iteration
// order is not defined.
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

// HTTPStatus satisfies the errors package's ErrorType marker interface;
// validation failures map to 422 per the engine's default error handler.
func (e *ValidationError) HTTPStatus() int { return 422 }

// Details satisfies the errors package's ErrorDetails marker interface,
// exposing per-field messages as a JSON-friendly slice of {path, message}.
func (e *ValidationError) Details() any {
	fields := make([]map[string]string, 0, len(e.Fields))
	for path, msg := range e.Fields {
		fields = append(fields, map[string]string{"path": path, "message": msg})
	}
	return fields
}
