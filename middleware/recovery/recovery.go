// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package recovery provides middleware that recovers from panics in the
// handler chain, logs them, and returns a 500 response instead of
// crashing the server.
package recovery

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/rivaas-dev/engine/router"
)

// Option configures the recovery middleware.
type Option func(*config)

type config struct {
	stackTrace      bool
	stackSize       int
	disableStackAll bool
	logger          func(c *router.Context, err any, stack []byte)
	handler         func(c *router.Context, err any)
}

func defaultConfig() *config {
	return &config{
		stackTrace:      true,
		stackSize:       4 << 10,
		disableStackAll: true,
		logger:          defaultLogger,
		handler:         defaultHandler,
	}
}

func defaultLogger(c *router.Context, err any, stack []byte) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("panic recovered", "error", fmt.Sprint(err), "stack", string(stack), "path", c.Request.URL.Path)
}

func defaultHandler(c *router.Context, _ any) {
	c.JSON(http.StatusInternalServerError, map[string]any{
		"error": "internal server error",
		"code":  "INTERNAL_ERROR",
	})
}

// WithStackTrace enables or disables stack trace capture. Default true.
func WithStackTrace(enabled bool) Option { return func(cfg *config) { cfg.stackTrace = enabled } }

// WithStackSize bounds the captured stack trace in bytes. Default 4KB.
func WithStackSize(size int) Option { return func(cfg *config) { cfg.stackSize = size } }

// WithLogger overrides how a recovered panic is logged.
func WithLogger(logger func(c *router.Context, err any, stack []byte)) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithHandler overrides the response sent after a recovered panic.
func WithHandler(handler func(c *router.Context, err any)) Option {
	return func(cfg *config) { cfg.handler = handler }
}

// New returns a middleware that recovers panics raised anywhere later in
// the chain. It should be registered first so it wraps every other
// middleware and the route handler.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		defer func() {
			if err := recover(); err != nil {
				var stack []byte
				if cfg.stackTrace {
					full := debug.Stack()
					if cfg.disableStackAll && len(full) > cfg.stackSize {
						stack = full[:cfg.stackSize]
					} else {
						stack = full
					}
				}
				if cfg.logger != nil {
					cfg.logger(c, err, stack)
				}
				if cfg.handler != nil {
					cfg.handler(c, err)
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
