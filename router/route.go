// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"fmt"
	"strings"
)

// segmentKind classifies one path segment of a parsed pattern.
type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segParam
	segWildcard
)

// segment is one slash-delimited piece of a route pattern after parsing.
type segment struct {
	kind       segmentKind
	literal    string // segLiteral
	paramName  string // segParam, segWildcard
	constraint Constraint // segParam only; nil means untyped ("string"-like) param
	optional   bool
}

// Route is a registered (method, pattern) pair with its handler chain.
type Route struct {
	Method     string
	Pattern    string
	Name       string
	segments   []segment
	handler    HandlerFunc
	middleware []HandlerFunc
	chain      []HandlerFunc // composed middleware + handler, built at Build()
	group      *Group
	Schema     any // optional OpenAPI-style schema descriptor, opaque to the router
}

// FullHandlerChain returns the composed pipeline for this route. Valid only
// after Build().
func (r *Route) FullHandlerChain() []HandlerFunc { return r.chain }

// parsePattern splits a route pattern into segments, validating constraint
// tags against the builtin set. Pattern syntax:
//
//	/literal/{name}/{name:type}/{wild*}/optional?
func parsePattern(pattern string) ([]segment, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: pattern must start with '/'", ErrInvalidPattern)
	}
	if pattern == "/" {
		return []segment{}, nil
	}
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	segments := make([]segment, 0, len(parts))
	for _, raw := range parts {
		if raw == "" {
			return nil, fmt.Errorf("%w: empty segment (duplicate slash) in %q", ErrInvalidPattern, pattern)
		}
		seg, err := parseSegment(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: in %q: %v", ErrInvalidPattern, pattern, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(raw string) (segment, error) {
	optional := false
	if strings.HasSuffix(raw, "?") {
		optional = true
		raw = strings.TrimSuffix(raw, "?")
	}
	if !strings.HasPrefix(raw, "{") {
		if strings.ContainsAny(raw, "{}") {
			return segment{}, fmt.Errorf("%w: malformed segment %q", ErrInvalidPattern, raw)
		}
		return segment{kind: segLiteral, literal: raw, optional: optional}, nil
	}
	if !strings.HasSuffix(raw, "}") {
		return segment{}, fmt.Errorf("%w: unterminated parameter %q", ErrInvalidPattern, raw)
	}
	inner := raw[1 : len(raw)-1]
	if inner == "" {
		return segment{}, fmt.Errorf("%w: empty parameter name", ErrInvalidPattern)
	}
	if strings.HasSuffix(inner, "*") {
		name := strings.TrimSuffix(inner, "*")
		if name == "" {
			return segment{}, fmt.Errorf("%w: wildcard requires a name", ErrInvalidPattern)
		}
		return segment{kind: segWildcard, paramName: name, optional: optional}, nil
	}
	name := inner
	var c Constraint
	if idx := strings.IndexByte(inner, ':'); idx >= 0 {
		name = inner[:idx]
		typeSpec := inner[idx+1:]
		tag := typeSpec
		regexArg := ""
		if strings.HasPrefix(typeSpec, "regex(") && strings.HasSuffix(typeSpec, ")") {
			tag = "regex"
			regexArg = typeSpec[len("regex(") : len(typeSpec)-1]
		}
		var err error
		c, err = builtinConstraint(tag, regexArg)
		if err != nil {
			return segment{}, err
		}
	}
	if name == "" {
		return segment{}, fmt.Errorf("%w: empty parameter name", ErrInvalidPattern)
	}
	return segment{kind: segParam, paramName: name, constraint: c, optional: optional}, nil
}
