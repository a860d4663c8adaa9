// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package recovery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/engine/router"
)

func newRouter(t *testing.T, opts ...Option) *router.Router {
	t.Helper()
	r, err := router.New()
	require.NoError(t, err)
	r.Use(New(opts...))
	r.GET("/panic", func(c *router.Context) { panic("boom") })
	r.GET("/ok", func(c *router.Context) { c.JSON(http.StatusOK, nil) })
	require.NoError(t, r.Build())
	return r
}

func TestRecovery_RecoversPanicAsInternalServerError(t *testing.T) {
	t.Parallel()

	r := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestRecovery_PassesThroughWhenNoPanic(t *testing.T) {
	t.Parallel()

	r := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery_WithHandlerOverridesResponse(t *testing.T) {
	t.Parallel()

	var seen any
	r := newRouter(t, WithHandler(func(c *router.Context, err any) {
		seen = err
		c.JSON(http.StatusTeapot, nil)
	}))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "boom", seen)
}

func TestRecovery_WithLoggerInvokedOnPanic(t *testing.T) {
	t.Parallel()

	var gotErr any
	var gotStack []byte
	r := newRouter(t, WithLogger(func(c *router.Context, err any, stack []byte) {
		gotErr = err
		gotStack = stack
	}))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "boom", gotErr)
	assert.NotEmpty(t, gotStack)
}

func TestRecovery_WithStackTraceFalseOmitsStack(t *testing.T) {
	t.Parallel()

	var gotStack []byte
	captured := false
	r := newRouter(t, WithStackTrace(false), WithLogger(func(c *router.Context, err any, stack []byte) {
		captured = true
		gotStack = stack
	}))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.True(t, captured)
	assert.Empty(t, gotStack)
}
