// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package version

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/engine/router"
)

func TestEngine_DetectHeaderThenDefault(t *testing.T) {
	t.Parallel()

	e := New(WithHeaderDetection("X-API-Version"), WithDefault("v1"))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	assert.Equal(t, "v1", e.Detect(req))

	req.Header.Set("X-API-Version", "v2")
	assert.Equal(t, "v2", e.Detect(req))
}

func TestEngine_DetectQuery(t *testing.T) {
	t.Parallel()

	e := New(WithQueryDetection("v"), WithDefault("v1"))
	req := httptest.NewRequest(http.MethodGet, "/users?v=v3", nil)
	assert.Equal(t, "v3", e.Detect(req))
}

func TestEngine_DetectPath(t *testing.T) {
	t.Parallel()

	e := New(WithPathDetection("/api/{version}/"), WithDefault("v1"))
	req := httptest.NewRequest(http.MethodGet, "/api/v2/users", nil)
	assert.Equal(t, "v2", e.Detect(req))

	req = httptest.NewRequest(http.MethodGet, "/other/path", nil)
	assert.Equal(t, "v1", e.Detect(req))
}

func TestEngine_InvalidVersionFallsBackToDefault(t *testing.T) {
	t.Parallel()

	e := New(WithHeaderDetection("X-API-Version"), WithDefault("v1"), WithValidVersions("v1", "v2"))
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-API-Version", "v99")
	assert.Equal(t, "v1", e.Detect(req))
}

func TestEngine_SetLifecycleHeadersDeprecated(t *testing.T) {
	t.Parallel()

	e := New(WithDefault("v1"), WithWarning299())
	e.Deprecate("v1", Lifecycle{Deprecated: true, MigrationURL: "https://docs.example.com/v2"})

	rec := httptest.NewRecorder()
	gone := e.SetLifecycleHeaders(rec, "v1")

	assert.False(t, gone)
	assert.Equal(t, "true", rec.Header().Get("Deprecation"))
	assert.Contains(t, rec.Header().Get("Warning"), "deprecated")
}

func TestEngine_SetLifecycleHeadersPastSunsetReturnsGone(t *testing.T) {
	t.Parallel()

	e := New(WithDefault("v1"), WithSunsetEnforcement())
	e.cfg.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	e.Deprecate("v1", Lifecycle{
		Deprecated: true,
		SunsetDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	rec := httptest.NewRecorder()
	assert.True(t, e.SetLifecycleHeaders(rec, "v1"))
	assert.NotEmpty(t, rec.Header().Get("Sunset"))
}

func TestMiddleware_SetsVersionAndHeader(t *testing.T) {
	t.Parallel()

	e := New(WithHeaderDetection("X-API-Version"), WithDefault("v1"), WithResponseHeaders())
	r, err := router.New()
	require.NoError(t, err)
	r.Use(Middleware(e))
	r.GET("/users", func(c *router.Context) {
		c.JSON(http.StatusOK, map[string]string{"version": Get(c)})
	})
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-API-Version", "v2")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v2", rec.Header().Get("X-API-Version"))
	assert.Contains(t, rec.Body.String(), "v2")
}

func TestMiddleware_SunsetEnforcementReturns410(t *testing.T) {
	t.Parallel()

	e := New(WithHeaderDetection("X-API-Version"), WithDefault("v1"), WithSunsetEnforcement())
	e.cfg.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	e.Deprecate("v1", Lifecycle{Deprecated: true, SunsetDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})

	r, err := router.New()
	require.NoError(t, err)
	r.Use(Middleware(e))
	r.GET("/users", func(c *router.Context) { c.JSON(http.StatusOK, nil) })
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestEngineGroup_MountsDisjointRouteTreePerVersion(t *testing.T) {
	t.Parallel()

	e := New(WithPathDetection("/api/{version}/"), WithDefault("v2"))
	r, err := router.New()
	require.NoError(t, err)
	r.Use(Middleware(e))

	v1 := e.Group(r, "/api/v1", "v1")
	v1.GET("/users", func(c *router.Context) {
		c.JSON(http.StatusOK, map[string]string{"version": Get(c), "users": "legacy"})
	})

	v2 := e.Group(r, "/api/v2", "v2")
	v2.GET("/users", func(c *router.Context) {
		c.JSON(http.StatusOK, map[string]string{"version": Get(c), "users": "current"})
	})
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "legacy")

	req = httptest.NewRequest(http.MethodGet, "/api/v2/users", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "current")
}
