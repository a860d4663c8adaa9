// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import "net/http"

// Group is a sub-pattern scope carrying its own middleware and name
// prefix, inherited by nested groups and routes registered through it.
type Group struct {
	router     *Router
	prefix     string
	middleware []HandlerFunc
	namePrefix string
}

// Group creates a Router-level route scope under prefix.
func (r *Router) Group(prefix string, middleware ...HandlerFunc) *Group {
	return &Group{router: r, prefix: prefix, middleware: middleware}
}

// Use appends middleware scoped to this group (and its nested groups).
func (g *Group) Use(mw ...HandlerFunc) *Group {
	g.middleware = append(g.middleware, mw...)
	return g
}

// SetNamePrefix sets the dotted prefix applied to names registered via
// Route.Named within this group.
func (g *Group) SetNamePrefix(prefix string) *Group {
	g.namePrefix = prefix
	return g
}

// Group nests a sub-scope, concatenating prefixes, middleware, and name
// prefixes with the parent.
func (g *Group) Group(prefix string, middleware ...HandlerFunc) *Group {
	combined := make([]HandlerFunc, 0, len(g.middleware)+len(middleware))
	combined = append(combined, g.middleware...)
	combined = append(combined, middleware...)
	return &Group{
		router:     g.router,
		prefix:     joinPrefix(g.prefix, prefix),
		middleware: combined,
		namePrefix: g.namePrefix,
	}
}

func joinPrefix(a, b string) string {
	switch {
	case a == "" || a == "/":
		return b
	case b == "" || b == "/":
		return a
	default:
		return a + b
	}
}

func (g *Group) addRoute(method, pattern string, handlers []HandlerFunc) *Route {
	fullPath := joinPrefix(g.prefix, pattern)
	allHandlers := make([]HandlerFunc, 0, len(g.middleware)+len(handlers))
	allHandlers = append(allHandlers, g.middleware...)
	allHandlers = append(allHandlers, handlers...)
	route, err := g.router.handle(method, fullPath, allHandlers, g)
	if err != nil {
		panic("router: " + err.Error())
	}
	return route
}

// GET registers a GET route under the group's prefix.
func (g *Group) GET(pattern string, handlers ...HandlerFunc) *Route {
	return g.addRoute(http.MethodGet, pattern, handlers)
}

// POST registers a POST route under the group's prefix.
func (g *Group) POST(pattern string, handlers ...HandlerFunc) *Route {
	return g.addRoute(http.MethodPost, pattern, handlers)
}

// PUT registers a PUT route under the group's prefix.
func (g *Group) PUT(pattern string, handlers ...HandlerFunc) *Route {
	return g.addRoute(http.MethodPut, pattern, handlers)
}

// PATCH registers a PATCH route under the group's prefix.
func (g *Group) PATCH(pattern string, handlers ...HandlerFunc) *Route {
	return g.addRoute(http.MethodPatch, pattern, handlers)
}

// DELETE registers a DELETE route under the group's prefix.
func (g *Group) DELETE(pattern string, handlers ...HandlerFunc) *Route {
	return g.addRoute(http.MethodDelete, pattern, handlers)
}

// OPTIONS registers an OPTIONS route under the group's prefix.
func (g *Group) OPTIONS(pattern string, handlers ...HandlerFunc) *Route {
	return g.addRoute(http.MethodOptions, pattern, handlers)
}

// HEAD registers a HEAD route under the group's prefix.
func (g *Group) HEAD(pattern string, handlers ...HandlerFunc) *Route {
	return g.addRoute(http.MethodHead, pattern, handlers)
}
