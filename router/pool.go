// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"net/http"
	"sync"
)

// contextPool reuses Context values across requests via sync.Pool to avoid
// one heap allocation per request on the hot path. Pooled Contexts are
// reset before reuse and must never be retained beyond the handler chain
// that received them.
type contextPool struct {
	router *Router
	pool   sync.Pool
}

func (p *contextPool) get(w http.ResponseWriter, r *http.Request) *Context {
	v := p.pool.Get()
	var c *Context
	if v == nil {
		c = &Context{router: p.router}
	} else {
		c = v.(*Context)
	}
	c.reset(w, r)
	return c
}

func (p *contextPool) put(c *Context) {
	c.release()
	p.pool.Put(c)
}
