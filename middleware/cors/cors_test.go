// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package cors

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
	r.GET("/ping", func(c *router.Context) { c.JSON(http.StatusOK, nil) })
	require.NoError(t, r.Build())
	return r
}

func TestCORS_NoOriginHeaderPassesThroughUnmodified(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithAllowAllOrigins(true))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithAllowedOrigins("https://allowed.example"))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowedOriginEchoed(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithAllowedOrigins("https://allowed.example"))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://allowed.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightRequestAnsweredDirectly(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithAllowAllOrigins(true))
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://allowed.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_CredentialsWithWildcardEchoesOrigin(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithAllowAllOrigins(true), WithAllowCredentials(true))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://allowed.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_WithAllowOriginFuncTakesPrecedence(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithAllowedOrigins("https://other.example"), WithAllowOriginFunc(func(origin string) bool {
		return origin == "https://dynamic.example"
	}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://dynamic.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://dynamic.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
