// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package ratelimit implements token-bucket, sliding-window, and quota
// rate-limiting strategies behind a single Limiter interface, plus
// identity derivation shared by all three.
package ratelimit

import (
	"time"
)

// Strategy names the algorithm backing a Policy.
type Strategy string

const (
	StrategyTokenBucket    Strategy = "token_bucket"
	StrategySlidingWindow  Strategy = "sliding_window"
	StrategyQuota          Strategy = "quota"
)

// FailoverMode controls behavior when the backing store for a Limiter is
// unavailable (relevant to distributed limiter implementations). The
// in-process strategies here cannot fail: Policy.Failover is not read and
// Decision.FailoverMarked is never set.
type FailoverMode string

const (
	// FailoverOpen allows the request through on store failure.
	FailoverOpen FailoverMode = "open"
	// FailoverClosed denies the request on store failure.
	FailoverClosed FailoverMode = "closed"
	// FailoverShadow allows the request through but marks the decision
	// as a failover for observability.
	FailoverShadow FailoverMode = "shadow"
)

// Policy configures one named rate limit.
type Policy struct {
	Name     string
	Strategy Strategy

	// Token bucket
	Capacity     int
	RefillPerSec float64

	// Sliding window
	Window time.Duration
	Limit  int

	// Quota
	Period time.Duration

	Identity func(ctx IdentitySource) string
	Failover FailoverMode
}

// IdentitySource is the narrow view of a request a Policy's Identity
// function projects into a rate-limit key.
type IdentitySource interface {
	ClientIP() string
	UserID() string
	APIKey() string
	RoutePattern() string
}

// DefaultIdentity projects client IP only, the spec's default.
func DefaultIdentity(src IdentitySource) string {
	return src.ClientIP()
}

// Decision is the outcome of one Evaluate call.
type Decision struct {
	Allowed        bool
	Identity       string
	Policy         string
	Strategy       Strategy
	Remaining      int
	ResetAt        time.Time
	RetryAfter     time.Duration
	FailoverMarked bool
}

// Limiter evaluates a single identity against a Policy.
type Limiter interface {
	Allow(identity string) Decision
}

// EventEmitter is the narrow publish surface used to report
// RateLimitAllowed/RateLimitBlocked telemetry. The eventbus package's Bus
// satisfies this directly through its Emit method.
type EventEmitter interface {
	Emit(name string, payload any)
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, any) {}

// Allowed is the payload of a "RateLimitAllowed" event.
type Allowed struct {
	Policy, Strategy, Identity string
	Remaining                  int
}

// Blocked is the payload of a "RateLimitBlocked" event.
type Blocked struct {
	Policy, Strategy, Identity string
	RetryAfter                 time.Duration
}

// Registry evaluates requests against named policies, holding one Limiter
// per policy; each Limiter keeps its own per-identity state.
type Registry struct {
	emitter  EventEmitter
	limiters map[string]Limiter // keyed by policy name for shared-bucket strategies; per-identity state lives inside the Limiter
}

// NewRegistry constructs a Registry. emitter may be nil to discard events.
func NewRegistry(emitter EventEmitter) *Registry {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Registry{emitter: emitter, limiters: make(map[string]Limiter)}
}

// Register builds and stores the Limiter for policy.
func (r *Registry) Register(policy Policy) {
	switch policy.Strategy {
	case StrategySlidingWindow:
		r.limiters[policy.Name] = newSlidingWindowLimiter(policy)
	case StrategyQuota:
		r.limiters[policy.Name] = newQuotaLimiter(policy)
	default:
		r.limiters[policy.Name] = newTokenBucketLimiter(policy)
	}
}

// Evaluate runs the named policy's limiter for identity, derived from src
// via identityFn (DefaultIdentity when nil), and emits the corresponding
// telemetry event. Policy.Identity is not consulted.
func (r *Registry) Evaluate(policyName string, src IdentitySource, identityFn func(IdentitySource) string) Decision {
	limiter, ok := r.limiters[policyName]
	if !ok {
		return Decision{Allowed: true, Policy: policyName}
	}
	if identityFn == nil {
		identityFn = DefaultIdentity
	}
	identity := identityFn(src)
	decision := limiter.Allow(identity)
	decision.Policy = policyName
	decision.Identity = identity

	if decision.Allowed {
		r.emitter.Emit("RateLimitAllowed", Allowed{Policy: policyName, Strategy: string(decision.Strategy), Identity: identity, Remaining: decision.Remaining})
	} else {
		r.emitter.Emit("RateLimitBlocked", Blocked{Policy: policyName, Strategy: string(decision.Strategy), Identity: identity, RetryAfter: decision.RetryAfter})
	}
	return decision
}
