// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"net"
	"net/http"
	"strings"
)

// trustedProxies holds the CIDR ranges a deployment trusts to set
// X-Forwarded-For/X-Real-IP, used when resolving ClientIP.
type trustedProxies struct {
	nets []*net.IPNet
}

// WithTrustedProxies configures CIDR ranges (e.g. "10.0.0.0/8") whose
// forwarded-for headers are honored when resolving a request's client IP.
// Without this option ClientIP always returns RemoteAddr's host.
func WithTrustedProxies(cidrs ...string) Option {
	return func(r *Router) {
		tp := &trustedProxies{}
		for _, c := range cidrs {
			if _, n, err := net.ParseCIDR(c); err == nil {
				tp.nets = append(tp.nets, n)
			}
		}
		r.trustedProxies = tp
	}
}

func (tp *trustedProxies) trusts(ip net.IP) bool {
	if tp == nil {
		return false
	}
	for _, n := range tp.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resolves the request's client IP, honoring X-Forwarded-For and
// X-Real-IP only when the immediate peer is a configured trusted proxy.
// Used by rate-limit identity derivation and structured logging.
func (c *Context) ClientIP() string {
	remoteHost, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		remoteHost = c.Request.RemoteAddr
	}
	peer := net.ParseIP(remoteHost)
	if peer == nil || !c.router.trustedProxies.trusts(peer) {
		return remoteHost
	}
	if xff := c.Request.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		first := strings.TrimSpace(parts[0])
		if first != "" {
			return first
		}
	}
	if xri := c.Request.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return remoteHost
}
