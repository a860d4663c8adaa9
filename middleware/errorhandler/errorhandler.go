// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package errorhandler maps errors recorded on the Context via AddError
// onto an HTTP response, using one of the errors package's Formatters. It
// is the default error-handler middleware the engine installs so that
// handlers can report a failure with ctx.AddError and trust a response
// gets written even if they never call JSON/String themselves.
package errorhandler

import (
	"encoding/json"

	"github.com/rivaas-dev/engine/errors"
	"github.com/rivaas-dev/engine/router"
)

// Option configures the errorhandler middleware.
type Option func(*config)

type config struct {
	formatter errors.Formatter
}

func defaultConfig() *config {
	return &config{formatter: errors.NewRFC9457("")}
}

// WithFormatter overrides the default RFC 9457 formatter.
func WithFormatter(f errors.Formatter) Option {
	return func(cfg *config) { cfg.formatter = f }
}

// New returns a middleware that runs the rest of the chain, then, if no
// response was written and at least one error was recorded via AddError,
// formats the first one and writes it. A handler that writes its own
// response (even after calling AddError) is left alone: the handler's
// response always wins.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		c.Next()

		errs := c.Errors()
		if len(errs) == 0 {
			return
		}

		info, ok := c.Response.(router.ResponseInfo)
		if ok && info.Written() {
			return
		}

		resp := cfg.formatter.Format(c.Request, errs[0])
		for key, values := range resp.Headers {
			for _, v := range values {
				c.Response.Header().Add(key, v)
			}
		}
		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/json; charset=utf-8"
		}
		c.Response.Header().Set("Content-Type", contentType)
		c.Response.WriteHeader(resp.Status)
		if resp.Body != nil && c.Request.Method != "HEAD" {
			_ = json.NewEncoder(c.Response).Encode(resp.Body)
		}
	}
}
