// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package methodoverride

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/engine/router"
)

func TestMethodOverride_HeaderOverridesPOSTToPUT(t *testing.T) {
	t.Parallel()

	var seenMethod, original string
	var hadOriginal bool
	r, err := router.New()
	require.NoError(t, err)
	r.Use(New())
	r.PUT("/res", func(c *router.Context) {
		seenMethod = c.Request.Method
		original, hadOriginal = GetOriginalMethod(c)
		c.JSON(http.StatusOK, nil)
	})
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodPost, "/res", nil)
	req.Header.Set("X-HTTP-Method-Override", "PUT")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.MethodPut, seenMethod)
	assert.True(t, hadOriginal)
	assert.Equal(t, http.MethodPost, original)
}

func TestMethodOverride_QueryParamOverride(t *testing.T) {
	t.Parallel()

	var seenMethod string
	r, err := router.New()
	require.NoError(t, err)
	r.Use(New())
	r.DELETE("/res", func(c *router.Context) {
		seenMethod = c.Request.Method
		c.JSON(http.StatusOK, nil)
	})
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodPost, "/res?_method=DELETE", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.MethodDelete, seenMethod)
}

func TestMethodOverride_DisallowedMethodIgnored(t *testing.T) {
	t.Parallel()

	r, err := router.New()
	require.NoError(t, err)
	r.Use(New())
	r.POST("/res", func(c *router.Context) { c.JSON(http.StatusOK, nil) })
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodPost, "/res", nil)
	req.Header.Set("X-HTTP-Method-Override", "TRACE")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodOverride_RequireCSRFBlocksWithoutToken(t *testing.T) {
	t.Parallel()

	type csrfKey struct{}
	r, err := router.New()
	require.NoError(t, err)
	r.Use(New(WithRequireCSRF(csrfKey{})))
	r.POST("/res", func(c *router.Context) { c.JSON(http.StatusOK, nil) })
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodPost, "/res", nil)
	req.Header.Set("X-HTTP-Method-Override", "PUT")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "falls through to the original POST handler")
}

func TestMethodOverride_RequireCSRFAllowsWithToken(t *testing.T) {
	t.Parallel()

	type csrfKey struct{}
	var seenMethod string
	r, err := router.New()
	require.NoError(t, err)
	r.Use(func(c *router.Context) {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), csrfKey{}, true))
		c.Next()
	})
	r.Use(New(WithRequireCSRF(csrfKey{})))
	r.PUT("/res", func(c *router.Context) {
		seenMethod = c.Request.Method
		c.JSON(http.StatusOK, nil)
	})
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodPost, "/res", nil)
	req.Header.Set("X-HTTP-Method-Override", "PUT")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.MethodPut, seenMethod)
}

func TestGetOriginalMethod_AbsentWhenNoOverride(t *testing.T) {
	t.Parallel()

	var hadOriginal bool
	r, err := router.New()
	require.NoError(t, err)
	r.Use(New())
	r.GET("/res", func(c *router.Context) {
		_, hadOriginal = GetOriginalMethod(c)
		c.JSON(http.StatusOK, nil)
	})
	require.NoError(t, r.Build())

	req := httptest.NewRequest(http.MethodGet, "/res", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.False(t, hadOriginal)
}
