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

// slidingWindowLimiter admits an identity if the count of its events
// within the last `window` is below `limit`, maintaining a monotonic
// per-identity event-timestamp log.
type slidingWindowLimiter struct {
	mu     sync.Mutex
	events map[string][]time.Time
	window time.Duration
	limit  int
}

func newSlidingWindowLimiter(p Policy) *slidingWindowLimiter {
	window := p.Window
	if window <= 0 {
		window = time.Minute
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 1
	}
	return &slidingWindowLimiter{
		events: make(map[string][]time.Time),
		window: window,
		limit:  limit,
	}
}

func (l *slidingWindowLimiter) Allow(identity string) Decision {
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	log := l.events[identity]
	pruned := log[:0]
	for _, t := range log {
		if t.After(cutoff) {
			pruned = append(pruned, t)
		}
	}

	if len(pruned) >= l.limit {
		l.events[identity] = pruned
		oldest := pruned[0]
		retryAfter := oldest.Add(l.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Decision{
			Allowed:    false,
			Strategy:   StrategySlidingWindow,
			RetryAfter: retryAfter,
			ResetAt:    oldest.Add(l.window),
		}
	}

	pruned = append(pruned, now)
	l.events[identity] = pruned
	return Decision{
		Allowed:   true,
		Strategy:  StrategySlidingWindow,
		Remaining: l.limit - len(pruned),
		ResetAt:   now.Add(l.window),
	}
}
