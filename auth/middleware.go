// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package auth

import (
	"net/http"
	"strings"

	"github.com/rivaas-dev/engine/router"
)

// principalKey is the Context value key RequireAuth/OptionalAuth attach
// the resolved Principal under.
const principalKey = "auth.principal"

// FromContext returns the Principal attached by RequireAuth/OptionalAuth,
// if any.
func FromContext(c *router.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

// SessionPrincipalLoader resolves a Principal from the request's session,
// used by the session-vs-token strategy when no bearer token is present.
type SessionPrincipalLoader func(c *router.Context) (*Principal, bool)

// Strategy selects between bearer-token and session-backed principal
// resolution per request: a token is tried first when an Authorization
// header is present, falling back to the session loader otherwise.
type Strategy struct {
	Validator     TokenValidator
	SessionLoader SessionPrincipalLoader
}

func (s Strategy) resolve(c *router.Context) (*Principal, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return nil, ErrInvalidToken
		}
		return s.Validator.Validate(strings.TrimSpace(token))
	}
	if s.SessionLoader != nil {
		if p, ok := s.SessionLoader(c); ok {
			return p, nil
		}
	}
	return nil, ErrInvalidToken
}

// RequireAuth resolves a Principal via strategy and aborts with 401 when
// resolution fails; otherwise it attaches the Principal and calls Next.
func RequireAuth(strategy Strategy) router.HandlerFunc {
	return func(c *router.Context) {
		principal, err := strategy.resolve(c)
		if err != nil {
			c.Response.WriteHeader(http.StatusUnauthorized)
			c.Abort()
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalAuth resolves a Principal when possible but never aborts the
// pipeline; handlers should check FromContext's ok return.
func OptionalAuth(strategy Strategy) router.HandlerFunc {
	return func(c *router.Context) {
		if principal, err := strategy.resolve(c); err == nil {
			c.Set(principalKey, principal)
		}
		c.Next()
	}
}

// RequirePermission aborts with 401 when no Principal is attached or 403
// when the Principal lacks resource:action.
func RequirePermission(resource, action string) router.HandlerFunc {
	return func(c *router.Context) {
		principal, ok := FromContext(c)
		if !ok {
			c.Response.WriteHeader(http.StatusUnauthorized)
			c.Abort()
			return
		}
		if !principal.HasPermission(resource, action) {
			c.Response.WriteHeader(http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAnyPermission aborts unless the Principal holds at least one of
// the given "resource:action" permissions.
func RequireAnyPermission(permissions ...string) router.HandlerFunc {
	return func(c *router.Context) {
		principal, ok := FromContext(c)
		if !ok {
			c.Response.WriteHeader(http.StatusUnauthorized)
			c.Abort()
			return
		}
		for _, perm := range permissions {
			resource, action, ok := ParsePermission(perm)
			if ok && principal.HasPermission(resource, action) {
				c.Next()
				return
			}
		}
		c.Response.WriteHeader(http.StatusForbidden)
		c.Abort()
	}
}

// RequireAllPermissions aborts unless the Principal holds every given
// "resource:action" permission.
func RequireAllPermissions(permissions ...string) router.HandlerFunc {
	return func(c *router.Context) {
		principal, ok := FromContext(c)
		if !ok {
			c.Response.WriteHeader(http.StatusUnauthorized)
			c.Abort()
			return
		}
		for _, perm := range permissions {
			resource, action, ok := ParsePermission(perm)
			if !ok || !principal.HasPermission(resource, action) {
				c.Response.WriteHeader(http.StatusForbidden)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
