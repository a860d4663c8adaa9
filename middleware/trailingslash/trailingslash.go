// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package trailingslash normalizes trailing slashes in request paths,
// either by redirecting before routing or rejecting after a route match.
package trailingslash

import (
	"net/http"
	"strings"

	"github.com/rivaas-dev/engine/router"
)

// Policy controls how a trailing slash mismatch is handled.
type Policy int

const (
	// PolicyRemove redirects "/foo/" to "/foo".
	PolicyRemove Policy = iota
	// PolicyAdd redirects "/foo" to "/foo/".
	PolicyAdd
	// PolicyStrict rejects the mismatched form with a 404 instead of redirecting.
	PolicyStrict
)

// Option configures the trailingslash middleware.
type Option func(*config)

type config struct {
	policy     Policy
	redirect   bool
	statusCode int
}

func defaultConfig() *config {
	return &config{
		policy:     PolicyRemove,
		redirect:   true,
		statusCode: http.StatusMovedPermanently,
	}
}

// WithPolicy sets the normalization policy. Default PolicyRemove.
func WithPolicy(policy Policy) Option { return func(cfg *config) { cfg.policy = policy } }

// WithRedirect controls whether a mismatch redirects (true) or rewrites
// the path in place (false). Ignored under PolicyStrict. Default true.
func WithRedirect(redirect bool) Option { return func(cfg *config) { cfg.redirect = redirect } }

// WithStatusCode sets the redirect status code. Default 301.
func WithStatusCode(code int) Option { return func(cfg *config) { cfg.statusCode = code } }

func normalize(path string, cfg *config) (string, bool) {
	if path == "/" {
		return path, false
	}

	hasSlash := strings.HasSuffix(path, "/")
	switch cfg.policy {
	case PolicyRemove:
		if hasSlash {
			return strings.TrimSuffix(path, "/"), true
		}
	case PolicyAdd:
		if !hasSlash {
			return path + "/", true
		}
	case PolicyStrict:
		return path, false
	}
	return path, false
}

// New returns a router.HandlerFunc that enforces the policy after route
// matching has already occurred. Under PolicyRemove and PolicyAdd it
// answers the non-canonical form with 404; under PolicyStrict it passes
// every request through. It never redirects or rewrites the path, and
// ignores WithRedirect and WithStatusCode. Prefer Wrap for redirect-based
// normalization.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		path := c.Request.URL.Path
		if path == "/" {
			c.Next()
			return
		}

		hasSlash := strings.HasSuffix(path, "/")
		mismatch := (cfg.policy == PolicyRemove && hasSlash) ||
			(cfg.policy == PolicyAdd && !hasSlash) ||
			(cfg.policy == PolicyStrict && false)

		if cfg.policy == PolicyStrict {
			c.Next()
			return
		}

		if mismatch {
			c.Status(http.StatusNotFound)
			c.Abort()
			return
		}

		c.Next()
	}
}

// Wrap returns an http.Handler that normalizes the path before routing,
// redirecting when the policy calls for it so the client lands on a
// canonical URL.
func Wrap(next http.Handler, opts ...Option) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.policy == PolicyStrict {
			next.ServeHTTP(w, r)
			return
		}

		normalized, changed := normalize(r.URL.Path, cfg)
		if !changed {
			next.ServeHTTP(w, r)
			return
		}

		if cfg.redirect {
			u := *r.URL
			u.Path = normalized
			http.Redirect(w, r, u.String(), cfg.statusCode)
			return
		}

		r.URL.Path = normalized
		next.ServeHTTP(w, r)
	})
}
