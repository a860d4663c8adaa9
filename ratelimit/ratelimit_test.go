// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	ip, user, key, route string
}

func (f fakeIdentity) ClientIP() string     { return f.ip }
func (f fakeIdentity) UserID() string       { return f.user }
func (f fakeIdentity) APIKey() string       { return f.key }
func (f fakeIdentity) RoutePattern() string { return f.route }

type recordingEmitter struct {
	names []string
}

func (r *recordingEmitter) Emit(name string, _ any) { r.names = append(r.names, name) }

func TestRegistry_Evaluate_UnknownPolicyAllows(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	decision := r.Evaluate("missing", fakeIdentity{ip: "1.1.1.1"}, nil)
	assert.True(t, decision.Allowed)
}

func TestRegistry_TokenBucket_BlocksAfterCapacity(t *testing.T) {
	t.Parallel()

	emitter := &recordingEmitter{}
	r := NewRegistry(emitter)
	r.Register(Policy{Name: "api", Strategy: StrategyTokenBucket, Capacity: 2, RefillPerSec: 0.001})

	id := fakeIdentity{ip: "2.2.2.2"}
	d1 := r.Evaluate("api", id, nil)
	d2 := r.Evaluate("api", id, nil)
	d3 := r.Evaluate("api", id, nil)

	assert.True(t, d1.Allowed)
	assert.True(t, d2.Allowed)
	assert.False(t, d3.Allowed)
	assert.Contains(t, emitter.names, "RateLimitAllowed")
	assert.Contains(t, emitter.names, "RateLimitBlocked")
}

func TestRegistry_SlidingWindow_BlocksAfterLimit(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Register(Policy{Name: "burst", Strategy: StrategySlidingWindow, Window: time.Minute, Limit: 2})

	id := fakeIdentity{ip: "3.3.3.3"}
	assert.True(t, r.Evaluate("burst", id, nil).Allowed)
	assert.True(t, r.Evaluate("burst", id, nil).Allowed)
	d := r.Evaluate("burst", id, nil)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestRegistry_Quota_ResetsAfterPeriod(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Register(Policy{Name: "daily", Strategy: StrategyQuota, Period: 20 * time.Millisecond, Limit: 1})

	id := fakeIdentity{ip: "4.4.4.4"}
	d1 := r.Evaluate("daily", id, nil)
	require.True(t, d1.Allowed)
	d2 := r.Evaluate("daily", id, nil)
	assert.False(t, d2.Allowed)

	time.Sleep(30 * time.Millisecond)
	d3 := r.Evaluate("daily", id, nil)
	assert.True(t, d3.Allowed)
}

func TestRegistry_Evaluate_IdentityIsolatesLimiters(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Register(Policy{Name: "api", Strategy: StrategyTokenBucket, Capacity: 1, RefillPerSec: 0.001})

	d1 := r.Evaluate("api", fakeIdentity{ip: "a"}, nil)
	d2 := r.Evaluate("api", fakeIdentity{ip: "b"}, nil)

	assert.True(t, d1.Allowed)
	assert.True(t, d2.Allowed, "distinct identities must not share a bucket")
}

func TestRegistry_Evaluate_CustomIdentityFn(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Register(Policy{Name: "api", Strategy: StrategyTokenBucket, Capacity: 1, RefillPerSec: 0.001})

	byUser := func(src IdentitySource) string { return src.UserID() }
	d1 := r.Evaluate("api", fakeIdentity{ip: "1.1.1.1", user: "alice"}, byUser)
	d2 := r.Evaluate("api", fakeIdentity{ip: "9.9.9.9", user: "alice"}, byUser)

	assert.True(t, d1.Allowed)
	assert.False(t, d2.Allowed, "same user id should share a bucket despite different IPs")
}

func TestDefaultIdentity_ProjectsClientIP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5.5.5.5", DefaultIdentity(fakeIdentity{ip: "5.5.5.5"}))
}
