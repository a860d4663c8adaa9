// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
)

// LifecycleSignal names one of the five signals Context fires during a
// request's life. Subscribers register on the Router's SignalHub.
type LifecycleSignal string

const (
	SignalStarted      LifecycleSignal = "started"
	SignalRouteMatched LifecycleSignal = "routeMatched"
	SignalAfterRouting LifecycleSignal = "afterRouting"
	SignalFinished     LifecycleSignal = "finished"
	SignalRoutingError LifecycleSignal = "routingError"
)

// SignalHub is the narrow publish surface Context needs to fire lifecycle
// signals. The eventbus package's Bus satisfies this via an adapter.
type SignalHub interface {
	Emit(name LifecycleSignal, ctx *Context, err error)
}

type noopSignalHub struct{}

func (noopSignalHub) Emit(LifecycleSignal, *Context, error) {}

// Context is the per-request façade handed to every middleware and
// handler. It is NOT safe for concurrent use and must never be retained
// past the handler chain that received it: it is returned to a sync.Pool
// immediately after the response is flushed.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter // always a *responseWriter; exported as the interface for Hijack/Flush support

	router *Router
	route  *Route

	routePattern string
	params       map[string]string

	chain []HandlerFunc
	index int

	aborted bool
	errs    []error

	Scope   ServiceScope
	session SessionHandle
	hub     SignalHub
	Logger  *slog.Logger

	requestID string

	cachedAccept     string
	cachedAcceptSpec []acceptSpec

	values map[string]any
}

// Set attaches an arbitrary value to the request, for handlers/middleware
// to pass data down the pipeline (e.g. the authenticated principal).
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

// Get retrieves a value attached via Set.
func (c *Context) Get(key string) (any, bool) {
	if c.values == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

func (c *Context) reset(w http.ResponseWriter, r *http.Request) {
	c.Request = r
	c.Response = &responseWriter{ResponseWriter: w, status: http.StatusOK}
	c.route = nil
	c.routePattern = ""
	c.params = nil
	c.chain = nil
	c.index = -1
	c.aborted = false
	c.errs = c.errs[:0]
	c.Scope = nil
	c.session = nil
	c.hub = noopSignalHub{}
	c.Logger = nil
	c.requestID = ""
	c.cachedAccept = ""
	c.cachedAcceptSpec = nil
	c.values = nil
	c.emit(SignalStarted, nil)
}

func (c *Context) release() {
	c.emit(SignalFinished, c.firstError())
	c.Request = nil
	c.Response = nil
}

func (c *Context) emit(sig LifecycleSignal, err error) {
	if c.hub != nil {
		c.hub.Emit(sig, c, err)
	}
}

// SetSignalHub installs the hub used for lifecycle-signal emission. Called
// by the engine when wiring a request-scoped event bus handle.
func (c *Context) SetSignalHub(h SignalHub) {
	if h != nil {
		c.hub = h
	}
}

// Next advances the pipeline cursor and runs the next handler in the
// composed chain. A handler that returns without calling Next ends the
// pipeline there; later handlers (including the route handler) do not run.
func (c *Context) Next() {
	c.index++
	if c.index >= len(c.chain) || c.aborted {
		return
	}
	last := c.index == len(c.chain)-1
	if c.route != nil && last {
		c.emit(SignalRouteMatched, nil)
	}
	c.chain[c.index](c)
	if c.route != nil && last {
		c.emit(SignalAfterRouting, c.firstError())
	}
}

// Abort stops the pipeline after the current handler returns; later
// handlers in the chain (including the route handler) do not run.
func (c *Context) Abort() { c.aborted = true }

// Aborted reports whether Abort has been called.
func (c *Context) Aborted() bool { return c.aborted }

// AddError records a handler-surfaced error without aborting the pipeline.
// The error-handler middleware and the `finished`/`routingError` signals
// observe it via Errors()/firstError().
func (c *Context) AddError(err error) {
	if err == nil {
		return
	}
	c.errs = append(c.errs, err)
	c.emit(SignalRoutingError, err)
}

// Errors returns every error recorded during this request.
func (c *Context) Errors() []error { return c.errs }

func (c *Context) firstError() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs[0]
}

// Context returns the request's context.Context, the carrier for
// cancellation propagated by the timeout middleware and shutdown drain.
func (c *Context) Context() context.Context { return c.Request.Context() }

// Router returns the owning Router, primarily for URL() reverse-routing
// from within a handler.
func (c *Context) Router() *Router { return c.router }

// Route returns the matched route, or nil for 404/405 responses.
func (c *Context) Route() *Route { return c.route }

// RoutePattern returns the matched pattern, or "" when unmatched.
func (c *Context) RoutePattern() string { return c.routePattern }

// RequestID returns the request-id assigned by middleware/requestid, or ""
// if that middleware is not installed.
func (c *Context) RequestID() string { return c.requestID }

// SetRequestID is called by middleware/requestid once it has resolved or
// generated an id for this request.
func (c *Context) SetRequestID(id string) { c.requestID = id }

// --- Params ---

// Param returns the named path parameter and whether it was bound.
func (c *Context) Param(name string) (string, bool) {
	if c.params == nil {
		return "", false
	}
	v, ok := c.params[name]
	return v, ok
}

// ParamOr returns the named parameter or def if unbound.
func (c *Context) ParamOr(name, def string) string {
	if v, ok := c.Param(name); ok {
		return v
	}
	return def
}

// MustParam returns the named parameter, panicking with ErrMissingParam if
// unbound. Safe to call only for params the matched route's pattern
// declares.
func (c *Context) MustParam(name string) string {
	v, ok := c.Param(name)
	if !ok {
		panic(ErrMissingParam)
	}
	return v
}

// ParamInt returns the named parameter parsed as int64.
func (c *Context) ParamInt(name string) (int64, error) {
	v, ok := c.Param(name)
	if !ok {
		return 0, ErrMissingParam
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, ErrParamType
	}
	return n, nil
}

// MustParamInt is ParamInt but panics on error.
func (c *Context) MustParamInt(name string) int64 {
	n, err := c.ParamInt(name)
	if err != nil {
		panic(err)
	}
	return n
}

// --- Session ---

// Session returns the request's session handle, or nil if no session
// middleware installed one.
func (c *Context) Session() SessionHandle { return c.session }

// SetSession installs the session handle, called by middleware/session
// (or equivalent engine wiring) early in the pipeline.
func (c *Context) SetSession(s SessionHandle) { c.session = s }

// --- Headers / cookies ---

// SetHeader replaces a response header.
func (c *Context) SetHeader(key, value string) { c.Response.Header().Set(key, value) }

// AddHeader appends a response header without replacing existing values.
func (c *Context) AddHeader(key, value string) { c.Response.Header().Add(key, value) }

// GetHeader returns a request header.
func (c *Context) GetHeader(key string) string { return c.Request.Header.Get(key) }

// SetCookie sets a response cookie.
func (c *Context) SetCookie(cookie *http.Cookie) { http.SetCookie(c.Response, cookie) }

// GetCookie returns a request cookie by name.
func (c *Context) GetCookie(name string) (*http.Cookie, error) { return c.Request.Cookie(name) }
