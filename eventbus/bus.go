// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package eventbus

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Bus is a typed publish/subscribe registry. It is safe for concurrent
// publish/subscribe; handlers for a single dispatch run sequentially in
// registration order.
type Bus struct {
	mu      sync.RWMutex
	subs    map[reflect.Type][]*subscription
	nextID  atomic.Uint64
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[reflect.Type][]*subscription)}
}

type subscription struct {
	id       uint64
	typ      reflect.Type
	sender   any
	hasSender bool
	dedupKey string
	invoke   func(event any, sender any) (panicErr *UnhandledSignalError)
}

// Subscription is a cancellation handle returned by Subscribe/On.
type Subscription struct {
	bus *Bus
	typ reflect.Type
	id  uint64
}

// Cancel removes the subscription. Safe to call more than once.
func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	list := s.bus.subs[s.typ]
	for i, sub := range list {
		if sub.id == s.id {
			s.bus.subs[s.typ] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// SubscribeOption configures Subscribe/On.
type SubscribeOption func(*subscription)

// WithSender scopes the subscription to fire only when the publisher
// supplies a matching sender via WithPublisherSender. Sender identity is
// compared with ==; pass a comparable value (string id, pointer, etc).
func WithSender(sender any) SubscribeOption {
	return func(s *subscription) { s.sender = sender; s.hasSender = true }
}

// WithDedupKey replaces any existing subscription on the same event type
// and key, so re-registering under the same key is idempotent instead of
// accumulating duplicate handlers.
func WithDedupKey(key string) SubscribeOption {
	return func(s *subscription) { s.dedupKey = key }
}

// Subscribe registers handler for every published event of type T,
// returning a Subscription that can be cancelled.
func Subscribe[T any](bus *Bus, handler func(T), opts ...SubscribeOption) Subscription {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ == nil {
		typ = reflect.TypeOf(&zero).Elem()
	}

	sub := &subscription{typ: typ}
	for _, opt := range opts {
		opt(sub)
	}
	sub.id = bus.nextID.Add(1)
	sub.invoke = func(event any, sender any) (panicErr *UnhandledSignalError) {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = fmt.Errorf("%v", r)
				}
				panicErr = &UnhandledSignalError{
					Name:   typ.String(),
					Event:  event,
					Key:    sub.dedupKey,
					Sender: sender,
					Err:    err,
					Stack:  debug.Stack(),
				}
			}
		}()
		handler(event.(T))
		return nil
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if sub.dedupKey != "" {
		list := bus.subs[typ]
		for i, existing := range list {
			if existing.dedupKey == sub.dedupKey {
				bus.subs[typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
	bus.subs[typ] = append(bus.subs[typ], sub)
	return Subscription{bus: bus, typ: typ, id: sub.id}
}

// PublishOption configures Publish.
type PublishOption func(*publishConfig)

type publishConfig struct {
	sender    any
	hasSender bool
}

// WithPublisherSender tags the dispatch with a sender identity, matched
// against subscriptions registered via WithSender.
func WithPublisherSender(sender any) PublishOption {
	return func(c *publishConfig) { c.sender = sender; c.hasSender = true }
}

// Publish delivers event to every subscriber of type T, sequentially, in
// registration order. Subscriber panics are recovered and redelivered as
// UnhandledSignalError to subscribers of that type (if any); they never
// propagate to the caller of Publish.
func Publish[T any](bus *Bus, event T, opts ...PublishOption) {
	var cfg publishConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	typ := reflect.TypeOf(event)
	bus.mu.RLock()
	subsCopy := append([]*subscription(nil), bus.subs[typ]...)
	bus.mu.RUnlock()

	_, isUnhandled := any(event).(*UnhandledSignalError)

	for _, sub := range subsCopy {
		if sub.hasSender && (!cfg.hasSender || sub.sender != cfg.sender) {
			continue
		}
		if panicErr := sub.invoke(event, cfg.sender); panicErr != nil {
			if isUnhandled {
				// Avoid infinite recursion if an UnhandledSignalError
				// subscriber itself panics.
				continue
			}
			Publish(bus, panicErr)
		}
	}
}
