// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package eventbus

import "sync"

// namedEvent wraps an arbitrary payload under a string name so string-keyed
// signals (lifecycle hooks, provider events) can share the generic Bus
// machinery without each needing its own Go type.
type namedEvent struct {
	name    string
	payload any
}

// Emit publishes payload under name as a namedEvent, satisfying the
// narrow EventEmitter interfaces used by router.SignalHub and
// provider.EventEmitter adapters.
func (b *Bus) Emit(name string, payload any) {
	Publish(b, namedEvent{name: name, payload: payload})
}

// OnNamed subscribes to every Emit call regardless of name; handler is
// responsible for filtering by name if it only cares about one. Prefer
// Signal for a type-safe, name-scoped subscription.
func (b *Bus) OnNamed(handler func(name string, payload any), opts ...SubscribeOption) Subscription {
	return Subscribe(b, func(e namedEvent) { handler(e.name, e.payload) }, opts...)
}

// Signal is a named stream of a single payload type T, with its own
// de-duplication namespace and sender-scoping independent of other
// signals sharing the same Bus.
type Signal[T any] struct {
	bus  *Bus
	name string

	mu   sync.Mutex
	subs map[string]Subscription // dedupKey -> latest subscription registered under it
}

// NewSignal declares a named signal of payload type T backed by bus.
func NewSignal[T any](bus *Bus, name string) *Signal[T] {
	return &Signal[T]{bus: bus, name: name, subs: make(map[string]Subscription)}
}

// Name returns the signal's declared name.
func (s *Signal[T]) Name() string { return s.name }

// signalEnvelope scopes a Signal's payload type by name so two
// same-payload-type Signals on one Bus don't collide.
type signalEnvelope[T any] struct {
	name    string
	payload T
}

// Emit dispatches event to every subscriber of this signal, in
// registration order, optionally scoped to sender.
func (s *Signal[T]) Emit(event T, opts ...PublishOption) {
	Publish(s.bus, signalEnvelope[T]{name: s.name, payload: event}, opts...)
}

// On subscribes handler to this signal. WithDedupKey replaces a prior
// subscription registered under the same key.
func (s *Signal[T]) On(handler func(T), opts ...SubscribeOption) Subscription {
	var dedup string
	rewritten := make([]SubscribeOption, 0, len(opts))
	for _, opt := range opts {
		probe := &subscription{}
		opt(probe)
		if probe.dedupKey != "" {
			dedup = probe.dedupKey
			rewritten = append(rewritten, WithDedupKey(s.name+"|"+probe.dedupKey))
			continue
		}
		rewritten = append(rewritten, opt)
	}

	wrapped := func(e signalEnvelope[T]) {
		if e.name != s.name {
			return
		}
		handler(e.payload)
	}

	sub := Subscribe(s.bus, wrapped, rewritten...)

	if dedup != "" {
		s.mu.Lock()
		s.subs[dedup] = sub
		s.mu.Unlock()
	}
	return sub
}
