// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package shutdown implements the Engine's graceful-shutdown state machine:
// running -> draining -> closed, with a grace-period drain timer racing a
// force-after deadline, OS signal watching, and a readiness flag for health
// endpoints.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"
)

// State names a phase of the shutdown state machine.
type State int32

const (
	Running State = iota
	Draining
	Closed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// EventEmitter is the narrow publish surface Controller needs to report
// lifecycle transitions. eventbus.Bus satisfies this structurally.
type EventEmitter interface {
	Emit(name string, payload any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, any) {}

// Draining payload fired when the controller leaves Running.
type DrainingStarted struct {
	Signal os.Signal
}

// Closed payload fired exactly once when the controller reaches Closed.
type ShutdownClosed struct {
	Forced   bool
	Duration time.Duration
}

// Config configures a Controller. Zero value is usable: a 30s grace period,
// a 45s force-after deadline, SIGINT/SIGTERM watched, readiness notification
// disabled (Ready reports false unless NotifyReadiness is set).
type Config struct {
	GracePeriod     time.Duration
	ForceAfter      time.Duration
	NotifyReadiness bool
	Signals         []os.Signal
	Emitter         EventEmitter
}

func (c Config) withDefaults() Config {
	if c.GracePeriod <= 0 {
		c.GracePeriod = 30 * time.Second
	}
	if c.ForceAfter <= 0 {
		c.ForceAfter = c.GracePeriod + 15*time.Second
	}
	if c.Signals == nil {
		c.Signals = DefaultSignals()
	}
	if c.Emitter == nil {
		c.Emitter = noopEmitter{}
	}
	return c
}

// Controller watches OS signals and/or programmatic Trigger calls, moving
// through running -> draining -> closed exactly once.
type Controller struct {
	cfg Config

	state    atomic.Int32
	ready    atomic.Bool
	forced   atomic.Bool
	once     sync.Once
	closedCh chan struct{}

	sigCh   chan os.Signal
	stopSig func()

	onShutdown []func(context.Context) // stop accepting new work
	onDrain    []func(context.Context) error
	onForce    []func(context.Context)

	mu sync.Mutex
}

// DefaultSignals returns the subset of SIGINT/SIGTERM this platform
// supports for graceful shutdown. SIGHUP is reserved for reload and is not
// included here.
func DefaultSignals() []os.Signal {
	return defaultShutdownSignals()
}

// New constructs a Controller in the Running state with readiness true
// when NotifyReadiness is configured.
func New(cfg Config) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{cfg: cfg, closedCh: make(chan struct{})}
	if cfg.NotifyReadiness {
		c.ready.Store(true)
	}
	return c
}

// State returns the controller's current phase.
func (c *Controller) State() State { return State(c.state.Load()) }

// Ready reports whether the readiness flag is set, for health endpoints to
// consult; it is cleared the instant drain begins.
func (c *Controller) Ready() bool { return c.ready.Load() }

// Forced reports whether the shutdown that reached Closed was forced by
// the force-after deadline rather than completing the drain cleanly.
func (c *Controller) Forced() bool { return c.forced.Load() }

// Done returns a channel closed once the controller reaches Closed.
func (c *Controller) Done() <-chan struct{} { return c.closedCh }

// OnShutdown registers a hook run synchronously when drain begins, before
// any in-flight work is awaited. Used to stop accepting new requests.
func (c *Controller) OnShutdown(fn func(context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onShutdown = append(c.onShutdown, fn)
}

// OnDrain registers a hook awaited during the grace period (e.g. waiting
// for in-flight requests to finish). An error marks the shutdown as
// forced and triggers the force-close hooks immediately.
func (c *Controller) OnDrain(fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDrain = append(c.onDrain, fn)
}

// OnForceClose registers a hook run if the force-after deadline elapses
// before the drain completes.
func (c *Controller) OnForceClose(fn func(context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onForce = append(c.onForce, fn)
}

// Watch subscribes to the controller's configured OS signals and triggers
// shutdown on receipt. It blocks until ctx is done or Trigger fires, and
// must be run in its own goroutine. Safe to skip entirely when the caller
// prefers to manage signal.NotifyContext itself and call Trigger directly.
func (c *Controller) Watch(ctx context.Context) {
	c.sigCh = make(chan os.Signal, 1)
	signal.Notify(c.sigCh, c.cfg.Signals...)
	c.stopSig = func() { signal.Stop(c.sigCh) }
	defer c.stopSig()

	select {
	case <-ctx.Done():
		return
	case sig := <-c.sigCh:
		c.Trigger(sig)
	case <-c.closedCh:
		return
	}
}

// Trigger moves the controller from Running to Draining and starts the
// grace-period/force-after race. It is idempotent: calls after the first
// are no-ops. sig may be nil for a programmatic trigger.
func (c *Controller) Trigger(sig os.Signal) {
	c.once.Do(func() {
		start := time.Now()
		c.state.Store(int32(Draining))
		c.ready.Store(false)
		c.cfg.Emitter.Emit("shutdown.draining", DrainingStarted{Signal: sig})

		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ForceAfter)
		defer cancel()

		c.mu.Lock()
		onShutdown := append([]func(context.Context){}, c.onShutdown...)
		onDrain := append([]func(context.Context) error{}, c.onDrain...)
		onForce := append([]func(context.Context){}, c.onForce...)
		c.mu.Unlock()

		for _, fn := range onShutdown {
			fn(ctx)
		}

		drainDone := make(chan error, 1)
		go func() {
			drainCtx, drainCancel := context.WithTimeout(context.Background(), c.cfg.GracePeriod)
			defer drainCancel()
			drainDone <- runDrainHooks(drainCtx, onDrain)
		}()

		forced := false
		select {
		case err := <-drainDone:
			if err != nil {
				forced = true
				for _, fn := range onForce {
					fn(ctx)
				}
			}
		case <-ctx.Done():
			forced = true
			for _, fn := range onForce {
				fn(ctx)
			}
		}

		c.forced.Store(forced)
		c.state.Store(int32(Closed))
		c.cfg.Emitter.Emit("shutdown.closed", ShutdownClosed{Forced: forced, Duration: time.Since(start)})
		close(c.closedCh)
	})
}

func runDrainHooks(ctx context.Context, hooks []func(context.Context) error) error {
	for _, fn := range hooks {
		if err := fn(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}
