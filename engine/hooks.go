// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package engine

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/rivaas-dev/engine/router"
)

// Hooks holds the functions an embedding application registers to
// participate in the engine's startup and shutdown, independent of the
// shutdown.Controller's own lower-level drain/force hooks.
type Hooks struct {
	mu         sync.Mutex
	onStart    []func(context.Context) error
	onReady    []func()
	onShutdown []func(context.Context)
	onStop     []func()
	onRoute    []func(router.RouteManifestEntry)
}

func newHooks() *Hooks { return &Hooks{} }

// OnStart registers fn to run sequentially, in registration order, before
// the server starts accepting connections. The first error aborts startup.
func (h *Hooks) OnStart(fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStart = append(h.onStart, fn)
}

// OnReady registers fn to run, each in its own goroutine, once the listener
// is accepting connections.
func (h *Hooks) OnReady(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReady = append(h.onReady, fn)
}

// OnShutdown registers fn to run, in reverse registration order, when the
// server begins its graceful shutdown.
func (h *Hooks) OnShutdown(fn func(context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onShutdown = append(h.onShutdown, fn)
}

// OnStop registers fn to run, best-effort and panic-recovered, after the
// server has fully stopped.
func (h *Hooks) OnStop(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStop = append(h.onStop, fn)
}

// OnRoute registers fn to be called once for every route once the router
// has been built, useful for building an external route manifest or
// OpenAPI document from the final table.
func (h *Hooks) OnRoute(fn func(router.RouteManifestEntry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRoute = append(h.onRoute, fn)
}

func (h *Hooks) fireRoutes(entries []router.RouteManifestEntry) {
	h.mu.Lock()
	hooks := append([]func(router.RouteManifestEntry){}, h.onRoute...)
	h.mu.Unlock()
	for _, fn := range hooks {
		for _, entry := range entries {
			fn(entry)
		}
	}
}

func (h *Hooks) executeStart(ctx context.Context) error {
	h.mu.Lock()
	hooks := append([]func(context.Context) error{}, h.onStart...)
	h.mu.Unlock()
	for i, fn := range hooks {
		if err := fn(ctx); err != nil {
			return &hookError{phase: "OnStart", index: i, err: err}
		}
	}
	return nil
}

func (h *Hooks) executeReady(logger *slog.Logger) {
	h.mu.Lock()
	hooks := append([]func(){}, h.onReady...)
	h.mu.Unlock()
	for _, fn := range hooks {
		go func(fn func()) {
			defer func() {
				if r := recover(); r != nil && logger != nil {
					logger.Error("OnReady hook panic", "panic", r)
				}
			}()
			fn()
		}(fn)
	}
}

func (h *Hooks) executeShutdown(ctx context.Context) {
	h.mu.Lock()
	hooks := append([]func(context.Context){}, h.onShutdown...)
	h.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i](ctx)
	}
}

func (h *Hooks) executeStop(logger *slog.Logger) {
	h.mu.Lock()
	hooks := append([]func(){}, h.onStop...)
	h.mu.Unlock()
	for _, fn := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil && logger != nil {
					logger.Warn("OnStop hook panic", "panic", r)
				}
			}()
			fn()
		}()
	}
}

type hookError struct {
	phase string
	index int
	err   error
}

func (e *hookError) Error() string {
	return e.phase + " hook " + strconv.Itoa(e.index) + " failed: " + e.err.Error()
}

func (e *hookError) Unwrap() error { return e.err }
