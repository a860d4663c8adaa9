// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// This file contains BDD-style integration tests verifying that several
// middleware adapters compose correctly into one stack, as opposed to
// each adapter's own isolated unit tests.

//go:build integration

package integration_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rivaas-dev/engine/middleware/accesslog"
	"github.com/rivaas-dev/engine/middleware/basicauth"
	"github.com/rivaas-dev/engine/middleware/cors"
	"github.com/rivaas-dev/engine/middleware/recovery"
	"github.com/rivaas-dev/engine/middleware/requestid"
	"github.com/rivaas-dev/engine/middleware/security"
	"github.com/rivaas-dev/engine/router"
)

var _ = Describe("Middleware Integration", Label("integration"), func() {
	Describe("Basic Stack", func() {
		It("integrates RequestID, AccessLog, and Recovery", func() {
			r, err := router.New()
			Expect(err).NotTo(HaveOccurred())
			r.Use(requestid.New())
			r.Use(accesslog.New())
			r.Use(recovery.New())

			r.GET("/ping", func(c *router.Context) {
				Expect(c.RequestID()).NotTo(BeEmpty())
				c.JSON(http.StatusOK, map[string]string{"status": "ok"})
			})
			Expect(r.Build()).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})

		It("recovers a panic without losing the request id", func() {
			r, err := router.New()
			Expect(err).NotTo(HaveOccurred())
			r.Use(requestid.New())
			r.Use(recovery.New())

			r.GET("/boom", func(c *router.Context) { panic("integration boom") })
			Expect(r.Build()).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})
	})

	Describe("Security Stack", func() {
		It("integrates Security, CORS, and BasicAuth", func() {
			r, err := router.New()
			Expect(err).NotTo(HaveOccurred())
			r.Use(security.New())
			r.Use(cors.New(cors.WithAllowedOrigins("https://example.com")))
			r.Use(basicauth.New(basicauth.WithUsers(map[string]string{"alice": "secret"})))

			r.GET("/secure", func(c *router.Context) {
				c.JSON(http.StatusOK, map[string]string{"user": basicauth.GetUsername(c)})
			})
			Expect(r.Build()).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			req.Header.Set("Origin", "https://example.com")
			req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("alice:secret")))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://example.com"))
			Expect(w.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
			Expect(w.Body.String()).To(ContainSubstring("alice"))
		})

		It("rejects missing credentials before the handler runs", func() {
			r, err := router.New()
			Expect(err).NotTo(HaveOccurred())
			r.Use(basicauth.New(basicauth.WithUsers(map[string]string{"alice": "secret"})))

			called := false
			r.GET("/secure", func(c *router.Context) {
				called = true
				c.JSON(http.StatusOK, nil)
			})
			Expect(r.Build()).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(called).To(BeFalse())
		})
	})
})
