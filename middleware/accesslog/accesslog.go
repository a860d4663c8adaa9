// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package accesslog logs one structured line per request, with sampling
// and slow-request detection so high-volume routes don't flood the log.
package accesslog

import (
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"strings"
	"time"

	"github.com/rivaas-dev/engine/router"
)

// Option configures the accesslog middleware.
type Option func(*config)

type config struct {
	logger          *slog.Logger
	excludePaths    map[string]bool
	excludePrefixes []string
	slowThreshold   time.Duration
	logErrorsOnly   bool
	sampleRate      float64
}

func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]bool),
		sampleRate:   1.0,
	}
}

// WithLogger sets the structured logger. If unset, New logs nothing.
func WithLogger(logger *slog.Logger) Option { return func(cfg *config) { cfg.logger = logger } }

// WithExcludePaths exempts exact paths from logging.
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludePrefix exempts a path prefix from logging.
func WithExcludePrefix(prefix string) Option {
	return func(cfg *config) { cfg.excludePrefixes = append(cfg.excludePrefixes, prefix) }
}

// WithSlowThreshold forces logging (bypassing sampling) for requests at
// or above the given duration, and tags them "slow".
func WithSlowThreshold(d time.Duration) Option { return func(cfg *config) { cfg.slowThreshold = d } }

// WithLogErrorsOnly restricts normal-path logging to 4xx/5xx responses
// and slow requests, suppressing everything else.
func WithLogErrorsOnly(only bool) Option { return func(cfg *config) { cfg.logErrorsOnly = only } }

// WithSampleRate sets the fraction (0.0-1.0) of non-error, non-slow
// requests logged. Sampling is deterministic per request id, so the same
// request makes the same decision across replicas. Default 1.0 (log all).
func WithSampleRate(rate float64) Option { return func(cfg *config) { cfg.sampleRate = rate } }

// New returns a middleware that logs one structured "access" entry per
// request after the handler chain has run, recording method, path,
// status, duration, response size, and route pattern.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		path := c.Request.URL.Path

		if cfg.excludePaths[path] {
			c.Next()
			return
		}
		for _, prefix := range cfg.excludePrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		info, ok := c.Response.(router.ResponseInfo)
		if !ok {
			return
		}
		status := info.Status()

		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold

		shouldLog := true
		if !isError && !isSlow {
			if cfg.logErrorsOnly {
				shouldLog = false
			} else if cfg.sampleRate < 1.0 {
				shouldLog = sampleByHash(c.RequestID(), cfg.sampleRate)
			}
		}
		if !shouldLog {
			return
		}

		logger := cfg.logger
		if logger == nil {
			return
		}

		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes_sent", info.Size(),
			"user_agent", c.Request.UserAgent(),
			"client_ip", c.ClientIP(),
			"host", c.Request.Host,
			"proto", c.Request.Proto,
		}
		if pattern := c.RoutePattern(); pattern != "" {
			fields = append(fields, "route", pattern)
		}
		if isSlow {
			fields = append(fields, "slow", true)
		}

		switch {
		case status >= 500:
			logger.Error("access", fields...)
		case status >= 400, isSlow:
			logger.Warn("access", fields...)
		default:
			logger.Info("access", fields...)
		}
	}
}

// sampleByHash makes a deterministic sampling decision from a hash of id,
// so the same request id always samples the same way across replicas.
func sampleByHash(id string, rate float64) bool {
	if id == "" || rate >= 1.0 {
		return true
	}
	h := sha256.Sum256([]byte(id))
	hashValue := binary.BigEndian.Uint64(h[:8])
	threshold := uint64(rate * float64(^uint64(0)))
	return hashValue <= threshold
}
