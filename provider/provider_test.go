// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/engine/container"
)

type stubProvider struct {
	name     string
	provides []string
	requires []string
	boot     func(context.Context, *container.Container) error
	stop     func(context.Context) error
	register func(*container.Container) error
}

func (p *stubProvider) Name() string                      { return p.name }
func (p *stubProvider) Provides() []string                { return p.provides }
func (p *stubProvider) Requires() []string                { return p.requires }
func (p *stubProvider) Register(c *container.Container) error {
	if p.register != nil {
		return p.register(c)
	}
	return nil
}

type bootableProvider struct {
	*stubProvider
}

func (p bootableProvider) Boot(ctx context.Context, c *container.Container) error {
	if p.boot != nil {
		return p.boot(ctx, c)
	}
	return nil
}

type stoppableProvider struct {
	bootableProvider
}

func (p stoppableProvider) Stop(ctx context.Context) error {
	if p.stop != nil {
		return p.stop(ctx)
	}
	return nil
}

type recordingEmitter struct {
	events []string
}

func (r *recordingEmitter) Emit(name string, payload any) { r.events = append(r.events, name) }

func TestRegistry_RegisterThenBoot(t *testing.T) {
	t.Parallel()

	emitter := &recordingEmitter{}
	r := NewRegistry(emitter)
	var registered, booted bool
	p := bootableProvider{&stubProvider{
		name:     "db",
		register: func(*container.Container) error { registered = true; return nil },
		boot:     func(context.Context, *container.Container) error { booted = true; return nil },
	}}
	r.Add(p)

	c := container.New()
	require.NoError(t, r.Register(c))
	assert.True(t, registered)

	require.NoError(t, r.Boot(context.Background(), c))
	assert.True(t, booted)

	assert.Contains(t, emitter.events, "ProviderRegistered")
	assert.Contains(t, emitter.events, "ProviderBooted")
}

func TestRegistry_BootOrdersByRequiresProvides(t *testing.T) {
	t.Parallel()

	var order []string
	db := bootableProvider{&stubProvider{
		name: "db", provides: []string{"db"},
		boot: func(context.Context, *container.Container) error { order = append(order, "db"); return nil },
	}}
	cache := bootableProvider{&stubProvider{
		name: "cache", provides: []string{"cache"}, requires: []string{"db"},
		boot: func(context.Context, *container.Container) error { order = append(order, "cache"); return nil },
	}}
	api := bootableProvider{&stubProvider{
		name: "api", requires: []string{"cache", "db"},
		boot: func(context.Context, *container.Container) error { order = append(order, "api"); return nil },
	}}

	r := NewRegistry(nil)
	// Add in an order that does not already satisfy dependencies.
	r.Add(api)
	r.Add(cache)
	r.Add(db)

	c := container.New()
	require.NoError(t, r.Register(c))
	require.NoError(t, r.Boot(context.Background(), c))

	assert.Equal(t, []string{"db", "cache", "api"}, order)
}

func TestRegistry_Boot_UnknownRequirement(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Add(&stubProvider{name: "api", requires: []string{"missing"}})

	c := container.New()
	require.NoError(t, r.Register(c))

	err := r.Boot(context.Background(), c)
	assert.ErrorIs(t, err, ErrUnknownRequirement)
}

func TestRegistry_Boot_CyclicDependency(t *testing.T) {
	t.Parallel()

	a := &stubProvider{name: "a", provides: []string{"a"}, requires: []string{"b"}}
	b := &stubProvider{name: "b", provides: []string{"b"}, requires: []string{"a"}}

	r := NewRegistry(nil)
	r.Add(a)
	r.Add(b)

	c := container.New()
	require.NoError(t, r.Register(c))

	err := r.Boot(context.Background(), c)
	assert.ErrorIs(t, err, ErrCyclicProviders)
}

func TestRegistry_RegisterTwiceFails(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Add(&stubProvider{name: "p"})
	c := container.New()
	require.NoError(t, r.Register(c))

	err := r.Register(c)
	assert.ErrorIs(t, err, ErrAlreadyBooted)
}

func TestRegistry_Stop_ReverseBootOrderBestEffort(t *testing.T) {
	t.Parallel()

	var order []string
	boom := errors.New("boom")

	first := stoppableProvider{bootableProvider{&stubProvider{name: "first"}}}
	first.stop = func(context.Context) error { order = append(order, "first"); return boom }

	second := stoppableProvider{bootableProvider{&stubProvider{name: "second"}}}
	second.stop = func(context.Context) error { order = append(order, "second"); return nil }

	r := NewRegistry(nil)
	r.Add(first)
	r.Add(second)

	c := container.New()
	require.NoError(t, r.Register(c))
	require.NoError(t, r.Boot(context.Background(), c))

	err := r.Stop(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestRegistry_RegisterPropagatesProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("register failed")
	r := NewRegistry(nil)
	r.Add(&stubProvider{name: "bad", register: func(*container.Container) error { return boom }})

	err := r.Register(container.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
