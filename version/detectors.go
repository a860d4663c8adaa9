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
	"strings"
)

type headerDetector struct{ header string }

func (d headerDetector) Detect(req *http.Request) (string, bool) {
	v := req.Header.Get(d.header)
	return v, v != ""
}

func (d headerDetector) Method() string { return "header" }

type queryDetector struct{ param string }

func (d queryDetector) Detect(req *http.Request) (string, bool) {
	v := req.URL.Query().Get(d.param)
	return v, v != ""
}

func (d queryDetector) Method() string { return "query" }

type customDetector struct {
	name string
	fn   func(*http.Request) (string, bool)
}

func (d customDetector) Detect(req *http.Request) (string, bool) { return d.fn(req) }
func (d customDetector) Method() string                          { return d.name }

// pathDetector extracts a version segment from a path pattern like
// "/api/{version}/", matching the literal prefix up to "{version}" and
// reading the next path segment as the version.
type pathDetector struct {
	prefix string
}

func newPathDetector(pattern string) *pathDetector {
	idx := strings.Index(pattern, "{version}")
	prefix := pattern
	if idx >= 0 {
		prefix = pattern[:idx]
	}
	return &pathDetector{prefix: prefix}
}

func (d *pathDetector) Detect(req *http.Request) (string, bool) {
	return d.extract(req.URL.Path)
}

func (d *pathDetector) Method() string { return "path" }

func (d *pathDetector) extract(path string) (string, bool) {
	if d.prefix == "" || !strings.HasPrefix(path, d.prefix) {
		return "", false
	}
	remaining := path[len(d.prefix):]
	if remaining == "" {
		return "", false
	}
	if end := strings.IndexByte(remaining, '/'); end >= 0 {
		remaining = remaining[:end]
	}
	if remaining == "" {
		return "", false
	}
	return remaining, true
}
