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
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// HandlerFunc is a route handler or middleware step. Middleware calls
// ctx.Next() to continue the pipeline; omitting the call short-circuits it.
type HandlerFunc func(*Context)

// TrailingSlashPolicy controls how a trailing slash on an inbound path is
// normalized before trie resolution.
type TrailingSlashPolicy uint8

const (
	// TrailingSlashStrict treats "/a" and "/a/" as distinct paths.
	TrailingSlashStrict TrailingSlashPolicy = iota
	// TrailingSlashRedirect strips a trailing slash and issues a redirect
	// for safe methods (GET/HEAD) when only the slash-stripped form
	// matches; unsafe methods resolve as not found.
	TrailingSlashRedirect
	// TrailingSlashIgnore strips a trailing slash before resolution with
	// no redirect.
	TrailingSlashIgnore
)

// Option configures a Router at construction time.
type Option func(*Router)

// WithCaseSensitive controls whether static segments compare
// case-sensitively. Default true.
func WithCaseSensitive(v bool) Option {
	return func(r *Router) { r.caseSensitive = v }
}

// WithTrailingSlashPolicy sets the trailing-slash normalization policy.
func WithTrailingSlashPolicy(p TrailingSlashPolicy) Option {
	return func(r *Router) { r.trailingSlash = p }
}

// WithObservabilityRecorder installs a recorder for route-match and
// pipeline metrics/tracing. Default is a no-op recorder.
func WithObservabilityRecorder(rec ObservabilityRecorder) Option {
	return func(r *Router) { r.observability = rec }
}

// WithNotFoundHandler overrides the default 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(r *Router) { r.notFoundHandler = h }
}

// WithMethodNotAllowedHandler overrides the default 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(r *Router) { r.methodNotAllowedHandler = h }
}

// Router owns a radix trie per HTTP method, the engine-wide middleware
// list, and named-route bookkeeping. It is safe for concurrent use only
// after Build() has frozen the route table; registration methods
// (GET/POST/Group/Use...) must not be called concurrently with each other
// or after Build().
type Router struct {
	mu      sync.Mutex
	tries   map[string]*methodTrie
	routes  []*Route
	named   map[string]*Route
	middleware []HandlerFunc

	caseSensitive bool
	trailingSlash TrailingSlashPolicy

	observability ObservabilityRecorder
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc

	frozen atomic.Bool

	pool      contextPool
	templates TemplateRenderer

	timeouts  *serverTimeouts
	enableH2C bool

	trustedProxies *trustedProxies
	maxBodySize    int64
}

// WithTemplateRenderer installs the renderer backing Context.Template.
func WithTemplateRenderer(t TemplateRenderer) Option {
	return func(r *Router) { r.templates = t }
}

// New constructs a Router applying the given options.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		tries:         make(map[string]*methodTrie),
		named:         make(map[string]*Route),
		caseSensitive: true,
		observability: NoopObservabilityRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.notFoundHandler == nil {
		r.notFoundHandler = defaultNotFoundHandler
	}
	if r.methodNotAllowedHandler == nil {
		r.methodNotAllowedHandler = defaultMethodNotAllowedHandler
	}
	r.pool.router = r
	return r, nil
}

// MustNew is New but panics on error; convenient at program init.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return r
}

func defaultNotFoundHandler(c *Context) {
	c.Status(http.StatusNotFound)
}

func defaultMethodNotAllowedHandler(c *Context) {
	c.Status(http.StatusMethodNotAllowed)
}

// Frozen reports whether Build has been called.
func (r *Router) Frozen() bool { return r.frozen.Load() }

// Use appends global middleware, executed before any group/route
// middleware for every request.
func (r *Router) Use(mw ...HandlerFunc) *Router {
	if r.frozen.Load() {
		panic("router: Use called after Build")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
	return r
}

func (r *Router) normalizePattern(pattern string) string {
	if pattern != "/" && strings.HasSuffix(pattern, "/") {
		switch r.trailingSlash {
		case TrailingSlashRedirect, TrailingSlashIgnore:
			pattern = strings.TrimSuffix(pattern, "/")
		}
	}
	return pattern
}

// handle registers a route for method+pattern with the given handler chain
// (group and route middleware already concatenated by the caller, handler
// last). Returns the created Route.
func (r *Router) handle(method, pattern string, handlers []HandlerFunc, g *Group) (*Route, error) {
	if r.frozen.Load() {
		return nil, ErrAlreadyBuilt
	}
	if len(handlers) == 0 {
		return nil, fmt.Errorf("%w: no handler registered", ErrInvalidPattern)
	}
	method = strings.ToUpper(method)
	pattern = r.normalizePattern(pattern)
	if !r.caseSensitive {
		pattern = strings.ToLower(pattern)
	}
	segs, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}
	if err := validateOptionalTail(segs); err != nil {
		return nil, err
	}

	route := &Route{
		Method:     method,
		Pattern:    pattern,
		segments:   segs,
		handler:    handlers[len(handlers)-1],
		middleware: handlers[:len(handlers)-1],
		group:      g,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	trie, ok := r.tries[method]
	if !ok {
		trie = newMethodTrie()
		r.tries[method] = trie
	}

	variants := optionalVariants(segs)
	for _, v := range variants {
		if err := trie.insert(v, route); err != nil {
			return nil, fmt.Errorf("%w: %s %s", err, method, pattern)
		}
	}
	r.routes = append(r.routes, route)
	return route, nil
}

// validateOptionalTail ensures optional segments only appear as a
// contiguous suffix, since resolution generates truncated variants.
func validateOptionalTail(segs []segment) error {
	seenOptional := false
	for _, s := range segs {
		if s.optional {
			seenOptional = true
			continue
		}
		if seenOptional {
			return fmt.Errorf("%w: optional segments must be a trailing suffix", ErrInvalidPattern)
		}
	}
	return nil
}

// optionalVariants returns every segment-list prefix that must be
// registered so a request omitting trailing optional segments still
// resolves, from the shortest (optional segments all omitted) to the full
// pattern.
func optionalVariants(segs []segment) [][]segment {
	firstOptional := len(segs)
	for i, s := range segs {
		if s.optional {
			firstOptional = i
			break
		}
	}
	if firstOptional == len(segs) {
		return [][]segment{segs}
	}
	variants := make([][]segment, 0, len(segs)-firstOptional+1)
	for end := firstOptional; end <= len(segs); end++ {
		variants = append(variants, segs[:end])
	}
	return variants
}

func registerMethod(r *Router, method, pattern string, handlers []HandlerFunc) *Route {
	route, err := r.handle(method, pattern, handlers, nil)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return route
}

// GET registers a GET route.
func (r *Router) GET(pattern string, handlers ...HandlerFunc) *Route {
	return registerMethod(r, http.MethodGet, pattern, handlers)
}

// POST registers a POST route.
func (r *Router) POST(pattern string, handlers ...HandlerFunc) *Route {
	return registerMethod(r, http.MethodPost, pattern, handlers)
}

// PUT registers a PUT route.
func (r *Router) PUT(pattern string, handlers ...HandlerFunc) *Route {
	return registerMethod(r, http.MethodPut, pattern, handlers)
}

// PATCH registers a PATCH route.
func (r *Router) PATCH(pattern string, handlers ...HandlerFunc) *Route {
	return registerMethod(r, http.MethodPatch, pattern, handlers)
}

// DELETE registers a DELETE route.
func (r *Router) DELETE(pattern string, handlers ...HandlerFunc) *Route {
	return registerMethod(r, http.MethodDelete, pattern, handlers)
}

// OPTIONS registers an OPTIONS route.
func (r *Router) OPTIONS(pattern string, handlers ...HandlerFunc) *Route {
	return registerMethod(r, http.MethodOptions, pattern, handlers)
}

// HEAD registers a HEAD route.
func (r *Router) HEAD(pattern string, handlers ...HandlerFunc) *Route {
	return registerMethod(r, http.MethodHead, pattern, handlers)
}

// Named assigns a globally unique name to the most recently built route,
// deriving the dotted prefix from any enclosing groups.
func (r *Route) Named(name string) *Route {
	if r.group != nil && r.group.namePrefix != "" {
		name = r.group.namePrefix + name
	}
	r.Name = name
	return r
}

// Build composes each route's middleware chain (global -> group -> route ->
// handler), registers named routes, and freezes the router against further
// mutation. Build must be called exactly once before Serve/ServeHTTP.
func (r *Router) Build() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return nil
	}
	for _, route := range r.routes {
		chain := make([]HandlerFunc, 0, len(r.middleware)+len(route.middleware)+1)
		chain = append(chain, r.middleware...)
		chain = append(chain, route.middleware...)
		chain = append(chain, route.handler)
		route.chain = chain
		if route.Name != "" {
			if _, exists := r.named[route.Name]; exists {
				return fmt.Errorf("%w: duplicate route name %q", ErrNamedRoute, route.Name)
			}
			r.named[route.Name] = route
		}
	}
	r.frozen.Store(true)
	return nil
}

// ServeHTTP implements http.Handler, resolving the request into a pooled
// Context and running its composed middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := r.pool.get(w, req)
	defer r.pool.put(ctx)

	path := req.URL.Path
	if !r.caseSensitive {
		path = strings.ToLower(path)
	}
	segs := splitPath(path)

	trie, hasMethodTrie := r.tries[req.Method]
	var result *matchResult
	if hasMethodTrie {
		result = trie.resolve(segs)
	}
	if result == nil {
		if r.trailingSlash == TrailingSlashRedirect && len(segs) > 0 && strings.HasSuffix(req.URL.Path, "/") {
			trimmed := splitPath(strings.TrimSuffix(path, "/"))
			if hasMethodTrie && trie.resolve(trimmed) != nil && isSafeMethod(req.Method) {
				u := *req.URL
				u.Path = strings.TrimSuffix(req.URL.Path, "/")
				http.Redirect(w, req, u.String(), http.StatusMovedPermanently)
				return
			}
		}
		if allowed := allowedMethods(r.tries, segs); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			ctx.route = nil
			ctx.chain = append(append(make([]HandlerFunc, 0, len(r.middleware)+1), r.middleware...), r.methodNotAllowedHandler)
			ctx.Next()
			return
		}
		ctx.route = nil
		ctx.chain = append(append(make([]HandlerFunc, 0, len(r.middleware)+1), r.middleware...), r.notFoundHandler)
		ctx.Next()
		return
	}

	ctx.route = result.route
	ctx.routePattern = result.route.Pattern
	ctx.params = result.params
	ctx.chain = result.route.chain
	r.observability.RecordRouteMatch(result.route.Method, result.route.Pattern)
	ctx.Next()
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// URL reconstructs a path for a named route, substituting params in
// segment order. Returns ErrNamedRoute if the name is unknown or a
// required parameter is missing.
func (r *Router) URL(name string, params map[string]string) (string, error) {
	r.mu.Lock()
	route, ok := r.named[name]
	r.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: unknown route %q", ErrNamedRoute, name)
	}
	var b strings.Builder
	for _, seg := range route.segments {
		b.WriteByte('/')
		switch seg.kind {
		case segLiteral:
			b.WriteString(seg.literal)
		case segParam, segWildcard:
			v, ok := params[seg.paramName]
			if !ok {
				if seg.optional {
					continue
				}
				return "", fmt.Errorf("%w: missing value for %q in route %q", ErrNamedRoute, seg.paramName, name)
			}
			b.WriteString(v)
		}
	}
	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}

// RouteManifestEntry describes one registered route for external tooling
// (e.g. a routes:dump CLI collaborator).
type RouteManifestEntry struct {
	Method  string
	Pattern string
	Name    string
}

// BuildRouteManifest returns a snapshot of every registered route. Safe to
// call only after Build.
func (r *Router) BuildRouteManifest() []RouteManifestEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RouteManifestEntry, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, RouteManifestEntry{Method: route.Method, Pattern: route.Pattern, Name: route.Name})
	}
	return out
}
