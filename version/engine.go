// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package version

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Engine detects the requested API version and reports per-version
// lifecycle state (deprecated/sunset) onto outgoing responses.
type Engine struct {
	cfg *Config
}

// New builds an Engine from opts.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Engine{cfg: cfg}
}

// Deprecate records a Lifecycle for version, applied by SetLifecycleHeaders
// and, when WithSunsetEnforcement is set, by the middleware's Gone check.
func (e *Engine) Deprecate(version string, lc Lifecycle) {
	e.cfg.lifecycles[version] = &lc
}

// Detect resolves the version a request is asking for: each configured
// detector runs in order, the first match that passes the allowlist wins,
// and the configured default is used if none match.
func (e *Engine) Detect(req *http.Request) string {
	for _, d := range e.cfg.detectors {
		if v, found := d.Detect(req); found {
			if validated := e.cfg.validate(v); validated != "" {
				return validated
			}
		}
	}
	return e.cfg.defaultVersion
}

// Lifecycle returns the registered lifecycle for version, or nil.
func (e *Engine) Lifecycle(version string) *Lifecycle { return e.cfg.lifecycles[version] }

// SetLifecycleHeaders writes X-API-Version/Deprecation/Sunset/Warning
// headers for version's response and reports whether the request should
// be rejected with 410 Gone (version past its sunset date under
// WithSunsetEnforcement).
func (e *Engine) SetLifecycleHeaders(w http.ResponseWriter, version string) bool {
	if e.cfg.sendVersionHeader && version != "" {
		w.Header().Set("X-API-Version", version)
	}

	lc := e.cfg.lifecycles[version]
	if lc == nil || !lc.Deprecated {
		return false
	}

	now := e.cfg.now()
	if e.cfg.enforceSunset && !lc.SunsetDate.IsZero() && now.After(lc.SunsetDate) {
		w.Header().Set("Sunset", lc.SunsetDate.UTC().Format(http.TimeFormat))
		if lc.MigrationURL != "" {
			w.Header().Set("Link", fmt.Sprintf("<%s>; rel=\"sunset\"", lc.MigrationURL))
		}
		return true
	}

	w.Header().Set("Deprecation", "true")
	if !lc.SunsetDate.IsZero() {
		w.Header().Set("Sunset", lc.SunsetDate.UTC().Format(http.TimeFormat))
	}
	if lc.MigrationURL != "" {
		links := []string{fmt.Sprintf("<%s>; rel=\"deprecation\"", lc.MigrationURL)}
		if !lc.SunsetDate.IsZero() {
			links = append(links, fmt.Sprintf("<%s>; rel=\"sunset\"", lc.MigrationURL))
		}
		w.Header().Set("Link", strings.Join(links, ", "))
	}
	if e.cfg.sendWarning299 {
		msg := fmt.Sprintf("299 - \"API %s is deprecated", version)
		if !lc.SunsetDate.IsZero() {
			msg += " and will be removed on " + lc.SunsetDate.Format(time.RFC3339)
		}
		msg += ". Please upgrade to a supported version.\""
		w.Header().Set("Warning", msg)
	}
	return false
}
