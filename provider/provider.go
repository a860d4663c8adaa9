// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package provider implements the Engine's boot lifecycle: providers
// register bindings, declare the service keys they require, and are
// booted in dependency order.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rivaas-dev/engine/container"
)

var (
	// ErrCyclicProviders is returned by Boot when the required-keys graph
	// cannot be topologically sorted.
	ErrCyclicProviders = errors.New("provider: cyclic provider dependencies")

	// ErrUnknownRequirement is returned when a provider requires a key
	// that no registered provider provides.
	ErrUnknownRequirement = errors.New("provider: required key has no provider")

	// ErrAlreadyBooted is returned when Register/Boot is called a second
	// time on the same Registry.
	ErrAlreadyBooted = errors.New("provider: registry already booted")
)

// Provider registers bindings into a container and optionally performs
// side-effectful initialization once every provider it requires has
// booted.
type Provider interface {
	// Name uniquely identifies this provider within a Registry.
	Name() string
	// Provides lists the service keys this provider binds during
	// Register, used to resolve other providers' Requires.
	Provides() []string
	// Requires lists service keys that must be bound (by some other
	// provider) before this provider's Boot runs.
	Requires() []string
	// Register performs pure container bindings; must not have side
	// effects beyond container.Bind/Singleton/Instance.
	Register(c *container.Container) error
}

// Booter is implemented by providers with side-effectful startup work.
// Providers that only register bindings need not implement it.
type Booter interface {
	Boot(ctx context.Context, c *container.Container) error
}

// Stopper is implemented by providers with shutdown cleanup. Stop runs for
// every booted provider in reverse boot order during Engine close.
type Stopper interface {
	Stop(ctx context.Context) error
}

// EventEmitter is the narrow publish surface Registry uses to announce
// ProviderRegistered/ProviderBooted. The eventbus package's Bus satisfies
// this directly through its Emit method.
type EventEmitter interface {
	Emit(name string, payload any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, any) {}

// Registered is the payload of a "ProviderRegistered" event.
type Registered struct{ Name string }

// Booted is the payload of a "ProviderBooted" event.
type Booted struct{ Name string }

// Registry owns the ordered provider list and drives register/boot/stop.
type Registry struct {
	providers []Provider
	booted    []Provider // booted providers, in boot order, for reverse Stop
	emitter   EventEmitter
	state     lifecycleState
}

type lifecycleState uint8

const (
	stateNew lifecycleState = iota
	stateRegistered
	stateBooted
)

// NewRegistry constructs an empty Registry. emitter may be nil, in which
// case events are discarded.
func NewRegistry(emitter EventEmitter) *Registry {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Registry{emitter: emitter}
}

// Add appends a provider to the registry. Must be called before Register.
func (r *Registry) Add(p Provider) {
	r.providers = append(r.providers, p)
}

// Register calls Register(c) on every provider in insertion order, then
// emits ProviderRegistered for each.
func (r *Registry) Register(c *container.Container) error {
	if r.state != stateNew {
		return ErrAlreadyBooted
	}
	for _, p := range r.providers {
		if err := p.Register(c); err != nil {
			return fmt.Errorf("provider: register %q: %w", p.Name(), err)
		}
		r.emitter.Emit("ProviderRegistered", Registered{Name: p.Name()})
	}
	r.state = stateRegistered
	return nil
}

// Boot topologically sorts providers by Requires/Provides and calls Boot
// (where implemented) in that order, emitting ProviderBooted for each.
func (r *Registry) Boot(ctx context.Context, c *container.Container) error {
	if r.state != stateRegistered {
		return ErrAlreadyBooted
	}
	order, err := topoSort(r.providers)
	if err != nil {
		return err
	}
	for _, p := range order {
		if booter, ok := p.(Booter); ok {
			if err := booter.Boot(ctx, c); err != nil {
				return fmt.Errorf("provider: boot %q: %w", p.Name(), err)
			}
		}
		r.booted = append(r.booted, p)
		r.emitter.Emit("ProviderBooted", Booted{Name: p.Name()})
	}
	r.state = stateBooted
	return nil
}

// Stop runs Stop (where implemented) for every booted provider in reverse
// boot order. Best-effort: it collects and returns the first error but
// still attempts every provider's Stop.
func (r *Registry) Stop(ctx context.Context) error {
	var first error
	for i := len(r.booted) - 1; i >= 0; i-- {
		p := r.booted[i]
		stopper, ok := p.(Stopper)
		if !ok {
			continue
		}
		if err := stopper.Stop(ctx); err != nil && first == nil {
			first = fmt.Errorf("provider: stop %q: %w", p.Name(), err)
		}
	}
	return first
}

// topoSort orders providers so that every provider runs after the
// providers that supply the keys it Requires. Providers whose Requires is
// empty may run in any relative order consistent with insertion order
// (stable Kahn's algorithm).
func topoSort(providers []Provider) ([]Provider, error) {
	producerOf := make(map[string]int) // key -> provider index
	for i, p := range providers {
		for _, key := range p.Provides() {
			producerOf[key] = i
		}
	}

	// adjacency: edge producer -> dependent
	dependents := make([][]int, len(providers))
	indegree := make([]int, len(providers))

	for i, p := range providers {
		seen := make(map[int]bool)
		for _, req := range p.Requires() {
			producerIdx, ok := producerOf[req]
			if !ok {
				return nil, fmt.Errorf("%w: %q requires %q", ErrUnknownRequirement, p.Name(), req)
			}
			if producerIdx == i || seen[producerIdx] {
				continue
			}
			seen[producerIdx] = true
			dependents[producerIdx] = append(dependents[producerIdx], i)
			indegree[i]++
		}
	}

	queue := make([]int, 0, len(providers))
	for i := range providers {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]Provider, 0, len(providers))
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		order = append(order, providers[idx])
		for _, dep := range dependents[idx] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(providers) {
		return nil, ErrCyclicProviders
	}
	return order, nil
}
