// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_TriggerTransitionsToClosed(t *testing.T) {
	t.Parallel()

	c := New(Config{
		GracePeriod:     50 * time.Millisecond,
		ForceAfter:      200 * time.Millisecond,
		NotifyReadiness: true,
	})
	require.Equal(t, Running, c.State())
	require.True(t, c.Ready())

	c.Trigger(nil)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller never closed")
	}

	assert.Equal(t, Closed, c.State())
	assert.False(t, c.Ready())
	assert.False(t, c.Forced())
}

func TestController_TriggerIsIdempotent(t *testing.T) {
	t.Parallel()

	var calls int
	var mu sync.Mutex
	c := New(Config{GracePeriod: 10 * time.Millisecond, ForceAfter: 50 * time.Millisecond})
	c.OnShutdown(func(context.Context) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Trigger(nil)
		}()
	}
	wg.Wait()
	<-c.Done()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestController_OnDrainErrorForcesClose(t *testing.T) {
	t.Parallel()

	var forced bool
	c := New(Config{GracePeriod: time.Second, ForceAfter: 2 * time.Second})
	c.OnDrain(func(context.Context) error {
		return errors.New("drain failed")
	})
	c.OnForceClose(func(context.Context) {
		forced = true
	})

	c.Trigger(nil)
	<-c.Done()

	assert.True(t, forced)
	assert.True(t, c.Forced())
}

func TestController_ForceAfterDeadlineElapses(t *testing.T) {
	t.Parallel()

	c := New(Config{GracePeriod: time.Second, ForceAfter: 30 * time.Millisecond})
	c.OnDrain(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	c.Trigger(nil)
	<-c.Done()

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, c.Forced())
}

func TestController_HookOrder(t *testing.T) {
	t.Parallel()

	var order []string
	var mu sync.Mutex
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	c := New(Config{GracePeriod: 50 * time.Millisecond, ForceAfter: 100 * time.Millisecond})
	c.OnShutdown(func(context.Context) { record("shutdown") })
	c.OnDrain(func(context.Context) error {
		record("drain")
		return nil
	})

	c.Trigger(nil)
	<-c.Done()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 2)
	assert.Equal(t, []string{"shutdown", "drain"}, order)
}

func TestDefaultSignals_NonEmpty(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, DefaultSignals())
}
