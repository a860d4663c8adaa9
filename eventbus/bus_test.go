// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderPlaced struct {
	ID string
}

func TestSubscribePublish_DeliversInRegistrationOrder(t *testing.T) {
	t.Parallel()

	bus := New()
	var order []string
	Subscribe(bus, func(e orderPlaced) { order = append(order, "first:"+e.ID) })
	Subscribe(bus, func(e orderPlaced) { order = append(order, "second:"+e.ID) })

	Publish(bus, orderPlaced{ID: "abc"})

	assert.Equal(t, []string{"first:abc", "second:abc"}, order)
}

func TestSubscription_CancelStopsDelivery(t *testing.T) {
	t.Parallel()

	bus := New()
	var count int
	sub := Subscribe(bus, func(orderPlaced) { count++ })

	Publish(bus, orderPlaced{ID: "1"})
	sub.Cancel()
	Publish(bus, orderPlaced{ID: "2"})

	assert.Equal(t, 1, count)

	// Cancel is idempotent.
	sub.Cancel()
}

func TestWithSender_ScopesDelivery(t *testing.T) {
	t.Parallel()

	bus := New()
	var gotA, gotB int
	Subscribe(bus, func(orderPlaced) { gotA++ }, WithSender("tenant-a"))
	Subscribe(bus, func(orderPlaced) { gotB++ }, WithSender("tenant-b"))

	Publish(bus, orderPlaced{ID: "1"}, WithPublisherSender("tenant-a"))

	assert.Equal(t, 1, gotA)
	assert.Equal(t, 0, gotB)
}

func TestWithDedupKey_ReplacesPriorSubscription(t *testing.T) {
	t.Parallel()

	bus := New()
	var calls []string
	Subscribe(bus, func(orderPlaced) { calls = append(calls, "v1") }, WithDedupKey("watcher"))
	Subscribe(bus, func(orderPlaced) { calls = append(calls, "v2") }, WithDedupKey("watcher"))

	Publish(bus, orderPlaced{ID: "1"})

	assert.Equal(t, []string{"v2"}, calls)
}

func TestPublish_RecoversPanicAsUnhandledSignalError(t *testing.T) {
	t.Parallel()

	bus := New()
	var caught *UnhandledSignalError
	Subscribe(bus, func(e *UnhandledSignalError) { caught = e })
	Subscribe(bus, func(orderPlaced) { panic("boom") })

	require.NotPanics(t, func() {
		Publish(bus, orderPlaced{ID: "1"})
	})
	require.NotNil(t, caught)
	assert.Contains(t, caught.Error(), "boom")
}

func TestBusEmitAndOnNamed(t *testing.T) {
	t.Parallel()

	bus := New()
	type seen struct {
		name    string
		payload any
	}
	got := make(chan seen, 1)
	bus.OnNamed(func(name string, payload any) { got <- seen{name, payload} })

	bus.Emit("shutdown.draining", 5*time.Second)

	select {
	case s := <-got:
		assert.Equal(t, "shutdown.draining", s.name)
		assert.Equal(t, 5*time.Second, s.payload)
	case <-time.After(time.Second):
		t.Fatal("expected named event")
	}
}

func TestSignal_ScopedByNameIndependentOfOtherSignals(t *testing.T) {
	t.Parallel()

	bus := New()
	started := NewSignal[string](bus, "started")
	stopped := NewSignal[string](bus, "stopped")

	var gotStarted, gotStopped string
	started.On(func(v string) { gotStarted = v })
	stopped.On(func(v string) { gotStopped = v })

	started.Emit("svc-a")

	assert.Equal(t, "svc-a", gotStarted)
	assert.Equal(t, "", gotStopped)
}

func TestSignal_DedupKeyNamespacedPerSignal(t *testing.T) {
	t.Parallel()

	bus := New()
	sig := NewSignal[int](bus, "counter")

	var calls []int
	sig.On(func(v int) { calls = append(calls, v) }, WithDedupKey("watcher"))
	sig.On(func(v int) { calls = append(calls, v*10) }, WithDedupKey("watcher"))

	sig.Emit(3)

	assert.Equal(t, []int{30}, calls)
}
