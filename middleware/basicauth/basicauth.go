// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package basicauth implements HTTP Basic Authentication (RFC 7617).
package basicauth

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/rivaas-dev/engine/router"
)

type usernameKey struct{}

// Option configures the basicauth middleware.
type Option func(*config)

type config struct {
	users               map[string]string
	realm               string
	validator           func(username, password string) bool
	unauthorizedHandler func(c *router.Context)
	skipPaths           map[string]bool
}

func defaultConfig() *config {
	return &config{
		users:               make(map[string]string),
		realm:               "Restricted",
		unauthorizedHandler: defaultUnauthorizedHandler,
		skipPaths:           make(map[string]bool),
	}
}

func defaultUnauthorizedHandler(c *router.Context) {
	c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "unauthorized",
		"code":  "UNAUTHORIZED",
	})
}

// WithUsers sets the static username/password table checked when no
// validator is configured.
func WithUsers(users map[string]string) Option { return func(cfg *config) { cfg.users = users } }

// WithRealm sets the realm shown in browser authentication prompts. Default "Restricted".
func WithRealm(realm string) Option { return func(cfg *config) { cfg.realm = realm } }

// WithValidator installs a custom credential check, taking precedence
// over WithUsers (e.g. a database or hashed-password lookup).
func WithValidator(fn func(username, password string) bool) Option {
	return func(cfg *config) { cfg.validator = fn }
}

// WithUnauthorizedHandler overrides the response sent on failed authentication.
func WithUnauthorizedHandler(handler func(c *router.Context)) Option {
	return func(cfg *config) { cfg.unauthorizedHandler = handler }
}

// WithSkipPaths exempts exact paths from authentication.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// New returns a middleware that validates credentials from the
// Authorization header using constant-time comparison, storing the
// authenticated username in the request context on success.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	authenticateHeader := `Basic realm="` + cfg.realm + `"`

	deny := func(c *router.Context) {
		c.Response.Header().Set("WWW-Authenticate", authenticateHeader)
		cfg.unauthorizedHandler(c)
		c.Abort()
	}

	return func(c *router.Context) {
		if cfg.skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		auth := c.Request.Header.Get("Authorization")
		const prefix = "Basic "
		if auth == "" || !strings.HasPrefix(auth, prefix) {
			deny(c)
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
		if err != nil {
			deny(c)
			return
		}

		credentials := string(decoded)
		colonIndex := strings.IndexByte(credentials, ':')
		if colonIndex == -1 {
			deny(c)
			return
		}

		username := credentials[:colonIndex]
		password := credentials[colonIndex+1:]

		var authenticated bool
		if cfg.validator != nil {
			authenticated = cfg.validator(username, password)
		} else if expected, ok := cfg.users[username]; ok {
			authenticated = subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
		}

		if !authenticated {
			deny(c)
			return
		}

		ctx := context.WithValue(c.Request.Context(), usernameKey{}, username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetUsername returns the authenticated username from the request
// context, or "" if no authentication has occurred.
func GetUsername(c *router.Context) string {
	if username, ok := c.Request.Context().Value(usernameKey{}).(string); ok {
		return username
	}
	return ""
}
