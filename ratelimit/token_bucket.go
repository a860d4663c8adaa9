// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package ratelimit

import (
	"sync"
	"time"
)

// tokenBucketEntry is one identity's bucket: its current token count and
// the wall-clock time it was last refilled.
type tokenBucketEntry struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// tokenBucketLimiter admits one identity at a time against
// {capacity, refill_per_sec}, tracking fractional tokens per identity and
// refilling them lazily from elapsed wall time on each Allow call. This
// mirrors the teacher's InMemoryTokenBucketStore.Allow rather than
// wrapping golang.org/x/time/rate, which has no way to report the
// bucket's remaining token count back to callers.
type tokenBucketLimiter struct {
	mu       sync.RWMutex
	entries  map[string]*tokenBucketEntry
	capacity int
	refill   float64
}

func newTokenBucketLimiter(p Policy) *tokenBucketLimiter {
	capacity := p.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	refill := p.RefillPerSec
	if refill <= 0 {
		refill = float64(capacity)
	}
	return &tokenBucketLimiter{
		entries:  make(map[string]*tokenBucketEntry),
		capacity: capacity,
		refill:   refill,
	}
}

func (l *tokenBucketLimiter) entryFor(identity string) *tokenBucketEntry {
	l.mu.RLock()
	e, ok := l.entries[identity]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok = l.entries[identity]; ok {
		return e
	}
	e = &tokenBucketEntry{tokens: float64(l.capacity), lastUpdate: time.Now()}
	l.entries[identity] = e
	return e
}

// Allow decrements one token if available, reporting the exact remaining
// count and reset delay rather than the -1 "unknown" sentinel an
// x/time/rate-backed implementation is forced to return.
func (l *tokenBucketLimiter) Allow(identity string) Decision {
	e := l.entryFor(identity)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(e.lastUpdate).Seconds()
	e.tokens += elapsed * l.refill
	if e.tokens > float64(l.capacity) {
		e.tokens = float64(l.capacity)
	}
	e.lastUpdate = now

	if e.tokens >= 1.0 {
		e.tokens -= 1.0
		return Decision{
			Allowed:   true,
			Strategy:  StrategyTokenBucket,
			Remaining: int(e.tokens),
			ResetAt:   now.Add(time.Second),
		}
	}

	tokensNeeded := 1.0 - e.tokens
	retryAfter := time.Duration(tokensNeeded / l.refill * float64(time.Second))
	if retryAfter < time.Millisecond {
		retryAfter = time.Millisecond
	}
	return Decision{
		Allowed:    false,
		Strategy:   StrategyTokenBucket,
		Remaining:  0,
		RetryAfter: retryAfter,
		ResetAt:    now.Add(retryAfter),
	}
}
