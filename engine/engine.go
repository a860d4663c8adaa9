// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package engine is the composition root: it wires the router, the service
// container, the provider registry, the event bus, the shutdown
// controller, and the logger into a single object with a build/serve
// lifecycle, and exposes the hook surface embedding applications use to
// participate in startup and shutdown.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rivaas-dev/engine/container"
	"github.com/rivaas-dev/engine/errors"
	"github.com/rivaas-dev/engine/eventbus"
	"github.com/rivaas-dev/engine/logging"
	"github.com/rivaas-dev/engine/middleware/errorhandler"
	"github.com/rivaas-dev/engine/provider"
	"github.com/rivaas-dev/engine/router"
	"github.com/rivaas-dev/engine/shutdown"
	"github.com/rivaas-dev/engine/version"
)

// lifecycleState names a phase of the engine's own build/serve state
// machine, distinct from the shutdown Controller's running/draining/closed
// states: an Engine can be built long before it ever starts serving.
type lifecycleState int32

const (
	stateUnbuilt lifecycleState = iota
	stateBuilt
	stateServing
)

const (
	DefaultServiceName    = "engine-app"
	DefaultServiceVersion = "0.0.0"
	DefaultEnvironment    = "development"

	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20

	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// Config holds the engine's own settings, separate from the application
// configuration resolved through the config package.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	Port int
}

func defaultConfig() *Config {
	return &Config{
		ServiceName:       DefaultServiceName,
		ServiceVersion:    DefaultServiceVersion,
		Environment:       DefaultEnvironment,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
	}
}

// Validate checks cross-field invariants the zero value and ad hoc option
// combinations can't enforce on their own, returning a *router.ValidationError
// so it maps onto the same 422 response shape as any other bind failure.
func (c *Config) Validate() *router.ValidationError {
	fields := make(map[string]string)

	if c.ReadTimeout > 0 && c.WriteTimeout > 0 && c.ReadTimeout > c.WriteTimeout {
		fields["readTimeout"] = "must not exceed writeTimeout"
	}
	if c.ShutdownTimeout < time.Second {
		fields["shutdownTimeout"] = "must be at least 1s to allow a clean drain"
	}
	if c.MaxHeaderBytes < 1024 {
		fields["maxHeaderBytes"] = "must be at least 1KB"
	}
	if c.Port < 0 || c.Port > 65535 {
		fields["port"] = "must be in range 0-65535"
	}
	if c.ServiceName == "" {
		fields["serviceName"] = "must not be empty"
	}

	if len(fields) == 0 {
		return nil
	}
	return &router.ValidationError{Fields: fields}
}

// ListenAddr returns the address Serve/ServeTLS bind to when called with
// an empty addr: ":<Port>", or ":0" (OS-assigned) if Port is unset.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Option configures an Engine during New.
type Option func(*Engine) error

func WithServiceName(name string) Option {
	return func(e *Engine) error { e.cfg.ServiceName = name; return nil }
}

func WithServiceVersion(version string) Option {
	return func(e *Engine) error { e.cfg.ServiceVersion = version; return nil }
}

func WithEnvironment(env string) Option {
	return func(e *Engine) error { e.cfg.Environment = env; return nil }
}

func WithPort(port int) Option {
	return func(e *Engine) error { e.cfg.Port = port; return nil }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(e *Engine) error { e.cfg.ShutdownTimeout = d; return nil }
}

func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(e *Engine) error {
		e.cfg.ReadHeaderTimeout, e.cfg.ReadTimeout, e.cfg.WriteTimeout, e.cfg.IdleTimeout = readHeader, read, write, idle
		return nil
	}
}

func WithMaxHeaderBytes(n int) Option {
	return func(e *Engine) error { e.cfg.MaxHeaderBytes = n; return nil }
}

// WithLogger installs a pre-built logger in place of the one New would
// otherwise construct from ServiceName/ServiceVersion/Environment.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) error { e.logger = l; return nil }
}

// WithRouterOptions passes options through to the underlying router.New.
func WithRouterOptions(opts ...router.Option) Option {
	return func(e *Engine) error { e.routerOpts = append(e.routerOpts, opts...); return nil }
}

// WithShutdownConfig overrides the shutdown.Controller's own configuration
// (grace period, force-after deadline, watched signals).
func WithShutdownConfig(cfg shutdown.Config) Option {
	return func(e *Engine) error { e.shutdownCfg = cfg; return nil }
}

// WithProviders registers providers to be added to the Registry during New.
func WithProviders(providers ...provider.Provider) Option {
	return func(e *Engine) error {
		for _, p := range providers {
			e.providers.Add(p)
		}
		return nil
	}
}

// WithErrorFormatter overrides the Formatter the default error-handler
// middleware uses to render errors recorded via Context.AddError. The
// default is errors.NewRFC9457("").
func WithErrorFormatter(f errors.Formatter) Option {
	return func(e *Engine) error { e.errorFormatter = f; return nil }
}

// WithVersioning installs v's detection middleware globally, so every
// handler can read version.Get(c) and every response carries v's
// configured lifecycle headers, without requiring routes to be split
// into per-version Groups via v.Group.
func WithVersioning(v *version.Engine) Option {
	return func(e *Engine) error { e.versionMiddleware = version.Middleware(v); return nil }
}

// Engine is the top-level object embedding applications construct once and
// serve from. Its zero value is not usable; construct with New.
type Engine struct {
	cfg        *Config
	routerOpts []router.Option

	router            *router.Router
	container         *container.Container
	providers         *provider.Registry
	bus               *eventbus.Bus
	shutdownCfg       shutdown.Config
	shutdownCtl       *shutdown.Controller
	logger            *logging.Logger
	errorFormatter    errors.Formatter
	versionMiddleware router.HandlerFunc
	hooks             *Hooks

	state atomic.Int32
}

// New builds an Engine from opts: a root container, a provider registry, an
// event bus, a shutdown controller, a logger (unless WithLogger overrode
// it), and a router carrying the bootstrap middleware that wires each
// request's Context to the container scope and the signal hub.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:       defaultConfig(),
		container: container.New(),
		bus:       eventbus.New(),
		hooks:     newHooks(),
	}
	e.providers = provider.NewRegistry(e.bus)

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("engine: option failed: %w", err)
		}
	}

	if e.logger == nil {
		handler := logging.JSONHandler
		if e.cfg.Environment == EnvironmentDevelopment {
			handler = logging.ConsoleHandler
		}
		logger, err := logging.New(
			logging.WithServiceName(e.cfg.ServiceName),
			logging.WithServiceVersion(e.cfg.ServiceVersion),
			logging.WithEnvironment(e.cfg.Environment),
			logging.WithHandlerType(handler),
		)
		if err != nil {
			return nil, fmt.Errorf("engine: building default logger: %w", err)
		}
		e.logger = logger
	}

	if verr := e.cfg.Validate(); verr != nil {
		return nil, verr
	}

	if e.shutdownCfg.Emitter == nil {
		e.shutdownCfg.Emitter = e.bus
	}
	e.shutdownCtl = shutdown.New(e.shutdownCfg)

	r, err := router.New(append([]router.Option{
		router.WithServerTimeouts(e.cfg.ReadHeaderTimeout, e.cfg.ReadTimeout, e.cfg.WriteTimeout, e.cfg.IdleTimeout),
	}, e.routerOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("engine: building router: %w", err)
	}
	if e.errorFormatter == nil {
		e.errorFormatter = errors.NewRFC9457("")
	}

	e.router = r
	chain := []router.HandlerFunc{e.bootstrapMiddleware(), errorhandler.New(errorhandler.WithFormatter(e.errorFormatter))}
	if e.versionMiddleware != nil {
		chain = append(chain, e.versionMiddleware)
	}
	e.router.Use(chain...)

	return e, nil
}

// MustNew panics if New returns an error.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic("engine: " + err.Error())
	}
	return e
}

// bootstrapMiddleware is the first handler in every request's chain: it
// attaches a request-scoped container and the signal hub adapter to the
// Context before anything else runs.
func (e *Engine) bootstrapMiddleware() router.HandlerFunc {
	hub := &signalHubAdapter{bus: e.bus}
	return func(c *router.Context) {
		scope := e.container.CreateScope()
		defer scope.Close()
		c.Scope = scope
		c.SetSignalHub(hub)
		hub.Emit(router.SignalStarted, c, nil)
		c.Logger = e.logger.Logger()
		c.Next()
	}
}

// Router returns the underlying router, for registering routes directly
// when the Use/Group convenience methods aren't enough.
func (e *Engine) Router() *router.Router { return e.router }

// Container returns the root service container.
func (e *Engine) Container() *container.Container { return e.container }

// Providers returns the provider registry.
func (e *Engine) Providers() *provider.Registry { return e.providers }

// Bus returns the event bus backing both lifecycle signals and named
// provider/shutdown/rate-limit events.
func (e *Engine) Bus() *eventbus.Bus { return e.bus }

// Shutdown returns the shutdown controller.
func (e *Engine) Shutdown() *shutdown.Controller { return e.shutdownCtl }

// Logger returns the engine's logger.
func (e *Engine) Logger() *logging.Logger { return e.logger }

// Hooks returns the lifecycle hook registrar.
func (e *Engine) Hooks() *Hooks { return e.hooks }

// Use appends global middleware. Panics if called after Build, since it
// delegates to the router's own frozen-after-Build Use.
func (e *Engine) Use(mw ...router.HandlerFunc) *Engine {
	e.router.Use(mw...)
	return e
}

// Group creates a route scope under prefix.
func (e *Engine) Group(prefix string, middleware ...router.HandlerFunc) *router.Group {
	return e.router.Group(prefix, middleware...)
}

// Built reports whether Build has run.
func (e *Engine) Built() bool { return lifecycleState(e.state.Load()) >= stateBuilt }

// Build registers and boots every provider, in dependency order, then
// composes the router's middleware chains and freezes it against further
// route registration. Build must be called exactly once before Serve.
func (e *Engine) Build(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(stateUnbuilt), int32(stateBuilt)) {
		return fmt.Errorf("engine: Build called more than once")
	}

	if err := e.providers.Register(e.container); err != nil {
		return fmt.Errorf("engine: registering providers: %w", err)
	}
	if err := e.providers.Boot(ctx, e.container); err != nil {
		return fmt.Errorf("engine: booting providers: %w", err)
	}
	if err := e.router.Build(); err != nil {
		return fmt.Errorf("engine: building router: %w", err)
	}
	e.hooks.fireRoutes(e.router.BuildRouteManifest())
	return nil
}

// signalHubAdapter bridges *eventbus.Bus, whose Emit(name, payload) serves
// provider/shutdown/ratelimit directly, onto router.SignalHub's distinct
// Emit(LifecycleSignal, *Context, error) shape.
type signalHubAdapter struct {
	bus *eventbus.Bus
}

// LifecycleEvent is the payload delivered to subscribers of a router
// lifecycle signal via Bus.OnNamed, under the signal's name. It is sent
// through Bus.Emit, so Subscribe[LifecycleEvent] does not receive it.
type LifecycleEvent struct {
	Signal router.LifecycleSignal
	Path   string
	Method string
	Err    error
}

func (a *signalHubAdapter) Emit(name router.LifecycleSignal, c *router.Context, err error) {
	evt := LifecycleEvent{Signal: name, Err: err}
	if c != nil && c.Request != nil {
		evt.Path = c.Request.URL.Path
		evt.Method = c.Request.Method
	}
	a.bus.Emit(string(name), evt)
}
