// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package cors implements Cross-Origin Resource Sharing, including
// preflight handling.
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/rivaas-dev/engine/router"
)

// Option configures the cors middleware.
type Option func(*config)

type config struct {
	allowedOrigins   []string
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
	allowAllOrigins  bool
	allowOriginFunc  func(origin string) bool
}

// defaultConfig is restrictive: no origins allowed until configured.
func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// WithAllowedOrigins sets the exact origins permitted.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *config) { cfg.allowedOrigins = origins }
}

// WithAllowAllOrigins permits every origin (Access-Control-Allow-Origin: *).
func WithAllowAllOrigins(allow bool) Option { return func(cfg *config) { cfg.allowAllOrigins = allow } }

// WithAllowOriginFunc installs a dynamic origin validator, taking
// precedence over WithAllowedOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) Option {
	return func(cfg *config) { cfg.allowOriginFunc = fn }
}

// WithAllowedMethods overrides the methods advertised in preflight responses.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) { cfg.allowedMethods = methods }
}

// WithAllowedHeaders overrides the headers advertised in preflight responses.
func WithAllowedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.allowedHeaders = headers }
}

// WithExposedHeaders sets Access-Control-Expose-Headers.
func WithExposedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.exposedHeaders = headers }
}

// WithAllowCredentials sets Access-Control-Allow-Credentials. Cannot be
// combined with a wildcard origin; the echoed origin is used instead.
func WithAllowCredentials(allow bool) Option { return func(cfg *config) { cfg.allowCredentials = allow } }

// WithMaxAge sets the preflight cache duration in seconds.
func WithMaxAge(seconds int) Option { return func(cfg *config) { cfg.maxAge = seconds } }

// New returns a middleware that handles CORS, answering preflight
// (OPTIONS) requests directly and adding the relevant headers to every
// other response.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	allowedMethodsHeader := strings.Join(cfg.allowedMethods, ", ")
	allowedHeadersHeader := strings.Join(cfg.allowedHeaders, ", ")
	exposedHeadersHeader := strings.Join(cfg.exposedHeaders, ", ")
	maxAgeHeader := strconv.Itoa(cfg.maxAge)

	return func(c *router.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowedOrigin := ""
		switch {
		case cfg.allowAllOrigins:
			allowedOrigin = "*"
		case cfg.allowOriginFunc != nil:
			if cfg.allowOriginFunc(origin) {
				allowedOrigin = origin
			}
		case slices.Contains(cfg.allowedOrigins, origin):
			allowedOrigin = origin
		}

		if allowedOrigin == "" {
			c.Next()
			return
		}

		if cfg.allowCredentials && allowedOrigin == "*" {
			c.SetHeader("Access-Control-Allow-Origin", origin)
			c.SetHeader("Access-Control-Allow-Credentials", "true")
		} else {
			c.SetHeader("Access-Control-Allow-Origin", allowedOrigin)
			if cfg.allowCredentials {
				c.SetHeader("Access-Control-Allow-Credentials", "true")
			}
		}

		if exposedHeadersHeader != "" {
			c.SetHeader("Access-Control-Expose-Headers", exposedHeadersHeader)
		}

		if c.Request.Method == http.MethodOptions {
			c.SetHeader("Access-Control-Allow-Methods", allowedMethodsHeader)
			c.SetHeader("Access-Control-Allow-Headers", allowedHeadersHeader)
			c.SetHeader("Access-Control-Max-Age", maxAgeHeader)
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		c.Next()
	}
}
