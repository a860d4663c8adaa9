// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package bodylimit caps request body size, rejecting oversized requests
// before or during the body read.
package bodylimit

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rivaas-dev/engine/router"
)

// ErrBodyLimitExceeded is wrapped with the observed byte count when a
// request body exceeds the configured limit.
var ErrBodyLimitExceeded = errors.New("request body too large")

// Option configures the bodylimit middleware.
type Option func(*config)

type config struct {
	limit     int64
	handler   func(c *router.Context, limit int64)
	skipPaths map[string]bool
}

func defaultConfig() *config {
	return &config{
		limit:     4 << 20, // 4MB
		handler:   defaultHandler,
		skipPaths: make(map[string]bool),
	}
}

func defaultHandler(c *router.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, map[string]any{
		"error": "request body too large",
		"code":  "BODY_TOO_LARGE",
		"limit": limit,
	})
}

// WithLimit sets the maximum request body size in bytes. Default 4MB.
func WithLimit(bytes int64) Option { return func(cfg *config) { cfg.limit = bytes } }

// WithHandler overrides the response sent when the limit is exceeded.
func WithHandler(handler func(c *router.Context, limit int64)) Option {
	return func(cfg *config) { cfg.handler = handler }
}

// WithSkipPaths exempts exact paths from the limit.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

type limitedReader struct {
	r      io.ReadCloser
	limit  int64
	read   int64
	onOver func(read int64)
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	n, err := lr.r.Read(p)
	lr.read += int64(n)
	if lr.read > lr.limit {
		if lr.onOver != nil {
			lr.onOver(lr.read)
		}
		return n, fmt.Errorf("%w: %d bytes", ErrBodyLimitExceeded, lr.read)
	}
	return n, err
}

func (lr *limitedReader) Close() error { return lr.r.Close() }

// New returns a middleware that rejects requests whose Content-Length
// declares a body larger than the limit, and enforces the limit during
// the read for chunked or undeclared bodies.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		path := c.Request.URL.Path
		if cfg.skipPaths[path] || strings.EqualFold(c.Request.Method, http.MethodGet) {
			c.Next()
			return
		}

		if c.Request.ContentLength > cfg.limit {
			cfg.handler(c, cfg.limit)
			c.Abort()
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = &limitedReader{
				r:     c.Request.Body,
				limit: cfg.limit,
			}
		}

		c.Next()
	}
}
