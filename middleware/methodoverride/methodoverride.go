// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package methodoverride lets a client signal an alternate HTTP method
// via a header or query parameter, for clients that cannot issue PUT,
// PATCH, or DELETE directly.
package methodoverride

import (
	"net/http"
	"slices"
	"strings"

	"github.com/rivaas-dev/engine/router"
)

// Option configures the methodoverride middleware.
type Option func(*config)

type config struct {
	header      string
	queryParam  string
	allowed     []string
	onlyOn      []string
	requireCSRF bool
	csrfKey     any
	requireBody bool
}

func defaultConfig() *config {
	return &config{
		header:     "X-HTTP-Method-Override",
		queryParam: "_method",
		allowed:    []string{http.MethodPut, http.MethodPatch, http.MethodDelete},
		onlyOn:     []string{http.MethodPost},
	}
}

// WithHeader sets the header name carrying the override. Default "X-HTTP-Method-Override".
func WithHeader(name string) Option { return func(cfg *config) { cfg.header = name } }

// WithQueryParam sets the query parameter name carrying the override. Default "_method".
func WithQueryParam(name string) Option { return func(cfg *config) { cfg.queryParam = name } }

// WithAllowedMethods restricts which methods may be requested via override.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) { cfg.allowed = methods }
}

// WithOnlyOn restricts which original methods accept an override. Default POST only.
func WithOnlyOn(methods ...string) Option { return func(cfg *config) { cfg.onlyOn = methods } }

// WithRequireCSRF requires a context value (set by a CSRF middleware
// under the given key) to be present and truthy before honoring an
// override.
func WithRequireCSRF(key any) Option {
	return func(cfg *config) {
		cfg.requireCSRF = true
		cfg.csrfKey = key
	}
}

// WithRequireBody requires a non-empty request body before honoring an override.
func WithRequireBody(require bool) Option { return func(cfg *config) { cfg.requireBody = require } }

// New returns a middleware that rewrites c.Request.Method when a valid
// override is present, recording the original method for GetOriginalMethod.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		original := c.Request.Method

		if !slices.Contains(cfg.onlyOn, original) {
			c.Next()
			return
		}

		override := c.Request.Header.Get(cfg.header)
		if override == "" {
			override = c.Request.URL.Query().Get(cfg.queryParam)
		}
		if override == "" {
			c.Next()
			return
		}

		if !slices.ContainsFunc(cfg.allowed, func(m string) bool {
			return strings.EqualFold(m, override)
		}) {
			c.Next()
			return
		}

		if cfg.requireCSRF {
			ok, _ := c.Context().Value(cfg.csrfKey).(bool)
			if !ok {
				c.Next()
				return
			}
		}

		if cfg.requireBody && c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		c.Set(string(overrideMarker), original)
		c.Request.Method = normalizeMethod(override)
		c.Next()
	}
}

const overrideMarker = "methodoverride.original_method"

// GetOriginalMethod returns the method the request arrived with before
// any override was applied, and whether an override was applied at all.
func GetOriginalMethod(c *router.Context) (string, bool) {
	v, ok := c.Get(overrideMarker)
	if !ok {
		return "", false
	}
	method, ok := v.(string)
	return method, ok
}

func normalizeMethod(m string) string {
	switch {
	case strings.EqualFold(m, http.MethodPut):
		return http.MethodPut
	case strings.EqualFold(m, http.MethodPatch):
		return http.MethodPatch
	case strings.EqualFold(m, http.MethodDelete):
		return http.MethodDelete
	default:
		return m
	}
}
