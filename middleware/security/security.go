// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package security sets common hardening headers (frame options, HSTS,
// content security policy, and similar).
package security

import (
	"fmt"

	"github.com/rivaas-dev/engine/router"
)

// Option configures the security middleware.
type Option func(*config)

type config struct {
	frameOptions          string
	contentTypeNosniff    bool
	xssProtection         string
	hstsMaxAge            int
	hstsIncludeSubdomains bool
	hstsPreload           bool
	contentSecurityPolicy string
	referrerPolicy        string
	permissionsPolicy     string
	customHeaders         map[string]string
}

func defaultConfig() *config {
	return &config{
		frameOptions:          "DENY",
		contentTypeNosniff:    true,
		xssProtection:         "1; mode=block",
		hstsMaxAge:            31536000,
		hstsIncludeSubdomains: true,
		contentSecurityPolicy: "default-src 'self'",
		referrerPolicy:        "strict-origin-when-cross-origin",
		customHeaders:         make(map[string]string),
	}
}

// WithFrameOptions sets X-Frame-Options. Default "DENY".
func WithFrameOptions(value string) Option { return func(cfg *config) { cfg.frameOptions = value } }

// WithContentSecurityPolicy sets Content-Security-Policy.
func WithContentSecurityPolicy(policy string) Option {
	return func(cfg *config) { cfg.contentSecurityPolicy = policy }
}

// WithReferrerPolicy sets Referrer-Policy.
func WithReferrerPolicy(policy string) Option {
	return func(cfg *config) { cfg.referrerPolicy = policy }
}

// WithPermissionsPolicy sets Permissions-Policy.
func WithPermissionsPolicy(policy string) Option {
	return func(cfg *config) { cfg.permissionsPolicy = policy }
}

// WithHSTS configures Strict-Transport-Security; maxAge of 0 disables it.
func WithHSTS(maxAge int, includeSubdomains, preload bool) Option {
	return func(cfg *config) {
		cfg.hstsMaxAge = maxAge
		cfg.hstsIncludeSubdomains = includeSubdomains
		cfg.hstsPreload = preload
	}
}

// WithCustomHeader adds an additional static header.
func WithCustomHeader(name, value string) Option {
	return func(cfg *config) { cfg.customHeaders[name] = value }
}

// DevelopmentPreset relaxes CSP and disables HSTS for local development.
func DevelopmentPreset() Option {
	return func(cfg *config) {
		cfg.frameOptions = "SAMEORIGIN"
		cfg.contentSecurityPolicy = "default-src 'self' 'unsafe-inline' 'unsafe-eval'"
		cfg.referrerPolicy = "no-referrer-when-downgrade"
		cfg.hstsMaxAge = 0
	}
}

// New returns a middleware that sets security headers with secure
// defaults, skipping HSTS on non-TLS connections.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var hstsHeader string
	if cfg.hstsMaxAge > 0 {
		hstsHeader = fmt.Sprintf("max-age=%d", cfg.hstsMaxAge)
		if cfg.hstsIncludeSubdomains {
			hstsHeader += "; includeSubDomains"
		}
		if cfg.hstsPreload {
			hstsHeader += "; preload"
		}
	}

	return func(c *router.Context) {
		if cfg.frameOptions != "" {
			c.SetHeader("X-Frame-Options", cfg.frameOptions)
		}
		if cfg.contentTypeNosniff {
			c.SetHeader("X-Content-Type-Options", "nosniff")
		}
		if cfg.xssProtection != "" {
			c.SetHeader("X-XSS-Protection", cfg.xssProtection)
		}
		if hstsHeader != "" && c.Request.TLS != nil {
			c.SetHeader("Strict-Transport-Security", hstsHeader)
		}
		if cfg.contentSecurityPolicy != "" {
			c.SetHeader("Content-Security-Policy", cfg.contentSecurityPolicy)
		}
		if cfg.referrerPolicy != "" {
			c.SetHeader("Referrer-Policy", cfg.referrerPolicy)
		}
		if cfg.permissionsPolicy != "" {
			c.SetHeader("Permissions-Policy", cfg.permissionsPolicy)
		}
		for name, value := range cfg.customHeaders {
			c.SetHeader(name, value)
		}
		c.Next()
	}
}
