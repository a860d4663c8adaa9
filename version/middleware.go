// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package version

import (
	"net/http"

	"github.com/rivaas-dev/engine/router"
)

const ctxKey = "engine.version"

// Middleware detects the request's API version with e, stores it on the
// Context (retrievable via Get), and writes lifecycle response headers.
// A version past its configured sunset date aborts the chain with 410
// Gone when the Engine was built WithSunsetEnforcement.
func Middleware(e *Engine) router.HandlerFunc {
	return func(c *router.Context) {
		v := e.Detect(c.Request)
		c.Set(ctxKey, v)

		if e.SetLifecycleHeaders(c.Response, v) {
			_ = c.JSON(http.StatusGone, map[string]string{
				"error":   "api version sunset",
				"version": v,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Get returns the version Middleware resolved for this request, or ""
// if Middleware was never installed.
func Get(c *router.Context) string {
	v, _ := c.Get(ctxKey)
	s, _ := v.(string)
	return s
}

// Group mounts version's own route tree under prefix (e.g. "/api/v1"),
// tagging every request that matches it with version so handlers can call
// Get and so the group's responses carry version's lifecycle headers.
// Because each version gets a distinct path prefix, its routes occupy a
// disjoint subtree of the router's trie: registering the same pattern
// ("/users") under two version groups never conflicts, unlike trying to
// dispatch multiple versions off one shared path.
func (e *Engine) Group(r *router.Router, prefix, version string, middleware ...router.HandlerFunc) *router.Group {
	tag := func(c *router.Context) {
		c.Set(ctxKey, version)
		if e.SetLifecycleHeaders(c.Response, version) {
			_ = c.JSON(http.StatusGone, map[string]string{
				"error":   "api version sunset",
				"version": version,
			})
			c.Abort()
			return
		}
		c.Next()
	}
	return r.Group(prefix, append([]router.HandlerFunc{tag}, middleware...)...)
}
