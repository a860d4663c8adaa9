// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package router implements the request engine: a radix-style route trie
// with typed parameter constraints, a layered middleware pipeline, and a
// per-request Context unifying binding, validation, response building,
// content negotiation, and conditional-request handling.
//
// A minimal server looks like:
//
//	r := router.MustNew()
//	r.GET("/users/{id:int}", func(c *router.Context) {
//	    c.JSON(http.StatusOK, map[string]any{"id": c.MustParamInt("id")})
//	})
//	r.Build()
//	http.ListenAndServe(":8080", r)
package router
