// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package timeout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/engine/router"
)

func newRouter(t *testing.T, slow time.Duration, opts ...Option) *router.Router {
	t.Helper()
	r, err := router.New()
	require.NoError(t, err)
	r.Use(New(opts...))
	r.GET("/ping", func(c *router.Context) {
		select {
		case <-time.After(slow):
			c.JSON(http.StatusOK, nil)
		case <-c.Request.Context().Done():
		}
	})
	require.NoError(t, r.Build())
	return r
}

func TestTimeout_FastHandlerSucceeds(t *testing.T) {
	t.Parallel()

	r := newRouter(t, 0, WithDuration(50*time.Millisecond))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeout_SlowHandlerGets408(t *testing.T) {
	t.Parallel()

	r := newRouter(t, 100*time.Millisecond, WithDuration(10*time.Millisecond))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
}

func TestTimeout_WithSkipPathsBypassesDeadline(t *testing.T) {
	t.Parallel()

	r, err := router.New()
	require.NoError(t, err)
	r.Use(New(WithDuration(10*time.Millisecond), WithSkipPaths("/ping")))
	r.GET("/ping", func(c *router.Context) {
		time.Sleep(30 * time.Millisecond)
		c.JSON(http.StatusOK, nil)
	})
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeout_WithHandlerOverridesResponse(t *testing.T) {
	t.Parallel()

	var called bool
	r := newRouter(t, 100*time.Millisecond, WithDuration(10*time.Millisecond), WithHandler(func(c *router.Context, d time.Duration) {
		called = true
		c.JSON(http.StatusTeapot, nil)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
