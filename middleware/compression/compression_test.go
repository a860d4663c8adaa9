// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package compression

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/engine/router"
)

func newRouter(t *testing.T, body string, opts ...Option) *router.Router {
	t.Helper()
	r, err := router.New()
	require.NoError(t, err)
	r.Use(New(opts...))
	r.GET("/res", func(c *router.Context) { c.String(http.StatusOK, body) })
	require.NoError(t, r.Build())
	return r
}

func TestCompression_GzipAppliedAboveMinSize(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("a", 2048)
	r := newRouter(t, body, WithMinSize(100))

	req := httptest.NewRequest(http.MethodGet, "/res", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	gr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestCompression_BrotliPreferredOnTie(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("b", 2048)
	r := newRouter(t, body, WithMinSize(100))

	req := httptest.NewRequest(http.MethodGet, "/res", nil)
	req.Header.Set("Accept-Encoding", "gzip;q=0.9, br;q=0.9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	br := brotli.NewReader(rec.Body)
	decoded, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestCompression_SkipsSmallResponses(t *testing.T) {
	t.Parallel()

	r := newRouter(t, "tiny", WithMinSize(1024))
	req := httptest.NewRequest(http.MethodGet, "/res", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", rec.Body.String())
}

func TestCompression_NoAcceptEncodingSkipsCompression(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("c", 2048)
	r := newRouter(t, body, WithMinSize(100))

	req := httptest.NewRequest(http.MethodGet, "/res", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, body, rec.Body.String())
}

func TestChooseEncoding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, EncodingNone, chooseEncoding(""))
	assert.Equal(t, EncodingGzip, chooseEncoding("gzip"))
	assert.Equal(t, EncodingBrotli, chooseEncoding("gzip;q=0.5, br;q=0.8"))
	assert.Equal(t, EncodingBrotli, chooseEncoding("gzip;q=0.8, br;q=0.8"))
	assert.Equal(t, EncodingNone, chooseEncoding("identity;q=1.0"))
}
