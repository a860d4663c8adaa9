// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package timeout bounds how long a request's handler chain may run,
// canceling the request context and returning a 408 response past the
// deadline.
package timeout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rivaas-dev/engine/router"
)

// Option configures the timeout middleware.
type Option func(*config)

type config struct {
	duration     time.Duration
	logger       *slog.Logger
	handler      func(c *router.Context, timeout time.Duration)
	skipPaths    map[string]bool
	skipPrefixes []string
	skipFunc     func(c *router.Context) bool
}

func defaultConfig() *config {
	return &config{
		duration:  30 * time.Second,
		logger:    slog.Default(),
		handler:   defaultHandler,
		skipPaths: make(map[string]bool),
	}
}

func defaultHandler(c *router.Context, timeout time.Duration) {
	c.JSON(http.StatusRequestTimeout, map[string]any{
		"error":   "request timeout",
		"code":    "TIMEOUT",
		"timeout": timeout.String(),
		"path":    c.Request.URL.Path,
	})
}

// WithDuration sets the per-request deadline. Default 30s.
func WithDuration(d time.Duration) Option { return func(cfg *config) { cfg.duration = d } }

// WithHandler overrides the response sent when the deadline elapses.
func WithHandler(handler func(c *router.Context, timeout time.Duration)) Option {
	return func(cfg *config) { cfg.handler = handler }
}

// WithSkipPaths exempts exact paths from the timeout.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// WithSkipPrefix exempts a path prefix from the timeout.
func WithSkipPrefix(prefix string) Option {
	return func(cfg *config) { cfg.skipPrefixes = append(cfg.skipPrefixes, prefix) }
}

// WithSkip installs a custom predicate to exempt a request from the timeout.
func WithSkip(fn func(c *router.Context) bool) Option { return func(cfg *config) { cfg.skipFunc = fn } }

func shouldSkip(cfg *config, c *router.Context) bool {
	path := c.Request.URL.Path
	if cfg.skipPaths[path] {
		return true
	}
	for _, prefix := range cfg.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return cfg.skipFunc != nil && cfg.skipFunc(c)
}

// New returns a middleware that runs the remaining chain with a deadline.
// Handlers spawned past the deadline keep running in their goroutine
// until they observe ctx.Done(); the middleware waits for that goroutine
// to finish before returning, so the Context is never reused while a
// handler still holds it.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if shouldSkip(cfg, c) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.duration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		done := make(chan struct{})
		panicChan := make(chan any, 1)
		timedOut := false

		go func() {
			defer func() {
				if r := recover(); r != nil {
					panicChan <- r
				}
				close(done)
			}()
			c.Next()
		}()

		select {
		case <-done:
			select {
			case p := <-panicChan:
				panic(p)
			default:
			}
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				timedOut = true
				if cfg.logger != nil {
					cfg.logger.Warn("request timeout", "method", c.Request.Method, "path", c.Request.URL.Path, "timeout", cfg.duration)
				}
				cfg.handler(c, cfg.duration)
			}
		}

		if timedOut {
			<-done
			select {
			case p := <-panicChan:
				panic(p)
			default:
			}
		}
	}
}
