// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package ratelimit adapts the engine's ratelimit.Registry onto
// router.Context, enforcing a named policy per request and emitting
// X-RateLimit-* informational headers.
package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rivaas-dev/engine/auth"
	"github.com/rivaas-dev/engine/ratelimit"
	"github.com/rivaas-dev/engine/router"
)

// Option configures the ratelimit middleware.
type Option func(*config)

type config struct {
	policy       string
	identityFn   func(ratelimit.IdentitySource) string
	headers      bool
	enforce      bool
	onExceeded   func(c *router.Context, decision ratelimit.Decision)
	apiKeyHeader string
}

func defaultConfig() *config {
	return &config{
		headers:      true,
		enforce:      true,
		apiKeyHeader: "X-API-Key",
	}
}

// WithPolicy selects the named Policy to evaluate. Required.
func WithPolicy(name string) Option { return func(cfg *config) { cfg.policy = name } }

// WithIdentity overrides how the rate-limit identity is derived. Default
// is ratelimit.DefaultIdentity (client IP); Policy.Identity is not consulted.
func WithIdentity(fn func(ratelimit.IdentitySource) string) Option {
	return func(cfg *config) { cfg.identityFn = fn }
}

// WithHeaders controls whether X-RateLimit-* headers are set. Default true.
func WithHeaders(enabled bool) Option { return func(cfg *config) { cfg.headers = enabled } }

// WithEnforce controls whether an exceeded limit blocks the request
// (true, default) or only reports via headers/events (false).
func WithEnforce(enforce bool) Option { return func(cfg *config) { cfg.enforce = enforce } }

// WithOnExceeded overrides the response sent when the limit is exceeded.
// The handler is responsible for writing the response and aborting.
func WithOnExceeded(fn func(c *router.Context, decision ratelimit.Decision)) Option {
	return func(cfg *config) { cfg.onExceeded = fn }
}

// WithAPIKeyHeader sets the header consulted for IdentitySource.APIKey(). Default "X-API-Key".
func WithAPIKeyHeader(name string) Option { return func(cfg *config) { cfg.apiKeyHeader = name } }

// contextIdentity adapts a router.Context to ratelimit.IdentitySource.
type contextIdentity struct {
	c            *router.Context
	apiKeyHeader string
}

func (i contextIdentity) ClientIP() string     { return i.c.ClientIP() }
func (i contextIdentity) RoutePattern() string { return i.c.RoutePattern() }

func (i contextIdentity) UserID() string {
	if principal, ok := auth.FromContext(i.c); ok {
		return principal.Subject
	}
	return ""
}

func (i contextIdentity) APIKey() string {
	return i.c.Request.Header.Get(i.apiKeyHeader)
}

// New returns a middleware that evaluates registry's named policy for
// every request, setting rate limit headers and returning 429 when the
// policy is enforced and exceeded.
func New(registry *ratelimit.Registry, opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		identity := contextIdentity{c: c, apiKeyHeader: cfg.apiKeyHeader}
		decision := registry.Evaluate(cfg.policy, identity, cfg.identityFn)

		if cfg.headers {
			c.SetHeader("X-RateLimit-Policy", decision.Policy)
			c.SetHeader("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.ResetAt.IsZero() {
				c.SetHeader("X-RateLimit-Reset", strconv.Itoa(max(0, int(time.Until(decision.ResetAt).Seconds()))))
			}
		}

		if !decision.Allowed {
			if cfg.onExceeded != nil {
				cfg.onExceeded(c, decision)
				c.Abort()
				return
			}

			if cfg.enforce {
				if decision.RetryAfter > 0 {
					c.SetHeader("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
				}
				c.JSON(http.StatusTooManyRequests, map[string]any{
					"error":  "too many requests",
					"code":   "RATE_LIMITED",
					"policy": decision.Policy,
				})
				c.Abort()
				return
			}
		}

		c.Next()
	}
}
