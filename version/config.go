// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package version resolves the API version a request is asking for (from
// a header, a query parameter, or a path segment) and feeds it to a
// per-version route tree via Engine.Group, along with deprecation/sunset
// lifecycle headers for versions nearing end-of-life.
package version

import (
	"net/http"
	"slices"
	"time"
)

// Detector extracts a candidate version string from a request.
type Detector interface {
	Detect(req *http.Request) (version string, found bool)
	Method() string
}

// Config holds the versioning engine's configuration, built via Option
// functions passed to New.
type Config struct {
	detectors      []Detector
	defaultVersion string
	validVersions  []string

	sendVersionHeader bool
	sendWarning299    bool
	enforceSunset     bool

	lifecycles map[string]*Lifecycle

	now func() time.Time
}

// Lifecycle describes a single version's deprecation/sunset state.
type Lifecycle struct {
	Deprecated   bool
	SunsetDate   time.Time
	MigrationURL string
	Successor    string
}

// Option configures a Config.
type Option func(*Config)

// WithHeaderDetection checks header for the version, e.g. "X-API-Version".
func WithHeaderDetection(header string) Option {
	return func(cfg *Config) { cfg.detectors = append(cfg.detectors, headerDetector{header: header}) }
}

// WithQueryDetection checks the named query parameter, e.g. "v" or "version".
func WithQueryDetection(param string) Option {
	return func(cfg *Config) { cfg.detectors = append(cfg.detectors, queryDetector{param: param}) }
}

// WithPathDetection checks a path segment matching pattern, which must
// contain the literal "{version}" placeholder, e.g. "/api/{version}/".
func WithPathDetection(pattern string) Option {
	return func(cfg *Config) { cfg.detectors = append(cfg.detectors, newPathDetector(pattern)) }
}

// WithCustomDetection installs an arbitrary detection function.
func WithCustomDetection(name string, fn func(*http.Request) (string, bool)) Option {
	return func(cfg *Config) {
		cfg.detectors = append(cfg.detectors, customDetector{name: name, fn: fn})
	}
}

// WithDefault sets the version assumed when no detector finds one.
func WithDefault(v string) Option { return func(cfg *Config) { cfg.defaultVersion = v } }

// WithValidVersions restricts accepted versions to this allowlist; a
// detected version outside it is treated as not found.
func WithValidVersions(versions ...string) Option {
	return func(cfg *Config) { cfg.validVersions = versions }
}

// WithResponseHeaders enables the X-API-Version response header.
func WithResponseHeaders() Option { return func(cfg *Config) { cfg.sendVersionHeader = true } }

// WithWarning299 enables a Warning: 299 header on deprecated-version responses.
func WithWarning299() Option { return func(cfg *Config) { cfg.sendWarning299 = true } }

// WithSunsetEnforcement makes requests to a version past its sunset date
// receive 410 Gone instead of being served.
func WithSunsetEnforcement() Option { return func(cfg *Config) { cfg.enforceSunset = true } }

func defaultConfig() *Config {
	return &Config{
		defaultVersion: "v1",
		lifecycles:     make(map[string]*Lifecycle),
		now:            time.Now,
	}
}

func (cfg *Config) validate(version string) string {
	if version == "" {
		return ""
	}
	if len(cfg.validVersions) == 0 || slices.Contains(cfg.validVersions, version) {
		return version
	}
	return ""
}
