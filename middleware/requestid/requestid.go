// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package requestid assigns a unique id to every request, honoring a
// client-supplied id when configured to, and attaches it to the Context
// and response header for log correlation.
package requestid

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rivaas-dev/engine/router"
)

// Option configures the requestid middleware.
type Option func(*config)

type config struct {
	header        string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		header:        "X-Request-ID",
		generator:     generateUUID,
		allowClientID: true,
	}
}

func generateUUID() string { return uuid.New().String() }

func generateULID() string { return ulid.MustNew(ulid.Now(), rand.Reader).String() }

// WithHeader sets the header name carrying the request id. Default "X-Request-ID".
func WithHeader(name string) Option { return func(cfg *config) { cfg.header = name } }

// WithULID switches generation to a ULID instead of a UUID.
func WithULID() Option { return func(cfg *config) { cfg.generator = generateULID } }

// WithGenerator overrides the id generation function.
func WithGenerator(generator func() string) Option {
	return func(cfg *config) { cfg.generator = generator }
}

// WithAllowClientID controls whether a client-supplied header value is
// accepted. Default true; set false to force server-generated ids only.
func WithAllowClientID(allow bool) Option { return func(cfg *config) { cfg.allowClientID = allow } }

// New returns a middleware that resolves or generates a request id,
// stores it on the Context via SetRequestID, and echoes it in the
// response header.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		var id string
		if cfg.allowClientID {
			id = c.Request.Header.Get(cfg.header)
		}
		if id == "" {
			id = cfg.generator()
		}
		c.SetRequestID(id)
		c.SetHeader(cfg.header, id)
		c.Next()
	}
}
