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

// quotaCounter is one identity's usage within the current period.
type quotaCounter struct {
	count      int
	periodEnds time.Time
}

// quotaLimiter resets an identity's counter at fixed period boundaries
// rather than a rolling window.
type quotaLimiter struct {
	mu       sync.Mutex
	counters map[string]*quotaCounter
	limit    int
	period   time.Duration
}

func newQuotaLimiter(p Policy) *quotaLimiter {
	period := p.Period
	if period <= 0 {
		period = time.Hour
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 1
	}
	return &quotaLimiter{
		counters: make(map[string]*quotaCounter),
		limit:    limit,
		period:   period,
	}
}

func (l *quotaLimiter) Allow(identity string) Decision {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.counters[identity]
	if !ok || now.After(c.periodEnds) {
		c = &quotaCounter{periodEnds: now.Add(l.period)}
		l.counters[identity] = c
	}

	if c.count >= l.limit {
		return Decision{
			Allowed:    false,
			Strategy:   StrategyQuota,
			RetryAfter: c.periodEnds.Sub(now),
			ResetAt:    c.periodEnds,
		}
	}

	c.count++
	return Decision{
		Allowed:   true,
		Strategy:  StrategyQuota,
		Remaining: l.limit - c.count,
		ResetAt:   c.periodEnds,
	}
}
