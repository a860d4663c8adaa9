// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"crypto/tls"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// serverTimeouts mirrors the timeout knobs exposed on the underlying
// http.Server.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// WithServerTimeouts sets the four http.Server timeout fields.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.timeouts = &serverTimeouts{readHeader: readHeader, read: read, write: write, idle: idle}
	}
}

// WithH2C enables HTTP/2 cleartext upgrade for plaintext listeners.
func WithH2C(enabled bool) Option {
	return func(r *Router) { r.enableH2C = enabled }
}

// NewServer builds an *http.Server bound to addr serving this Router. When
// H2C is enabled and no TLS config is present, the handler is wrapped with
// an h2c.NewHandler so HTTP/2 prior-knowledge and upgrade requests are
// served in cleartext; otherwise TLS termination provides HTTP/2 via ALPN
// and a plain http2.ConfigureServer call prepares the server for it.
func (r *Router) NewServer(addr string, tlsConfig *tls.Config) *http.Server {
	var handler http.Handler = r
	srv := &http.Server{
		Addr:      addr,
		TLSConfig: tlsConfig,
	}
	if r.timeouts != nil {
		srv.ReadHeaderTimeout = r.timeouts.readHeader
		srv.ReadTimeout = r.timeouts.read
		srv.WriteTimeout = r.timeouts.write
		srv.IdleTimeout = r.timeouts.idle
	}
	if tlsConfig != nil {
		_ = http2.ConfigureServer(srv, &http2.Server{})
	} else if r.enableH2C {
		h2s := &http2.Server{}
		handler = h2c.NewHandler(r, h2s)
	}
	srv.Handler = handler
	return srv
}
