// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// JSONAPI formats errors per the JSON:API error object spec
// (application/vnd.api+json).
type JSONAPI struct {
	StatusResolver func(err error) int
}

type jsonAPIError struct {
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status,omitempty"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title,omitempty"`
	Detail string         `json:"detail,omitempty"`
	Source *jsonAPISource `json:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

type jsonAPISource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Header    string `json:"header,omitempty"`
}

type jsonAPIErrorResponse struct {
	Errors []jsonAPIError `json:"errors"`
}

// Format implements Formatter.
func (f *JSONAPI) Format(req *http.Request, err error) Response {
	status := f.determineStatus(err)
	apiErrors := f.buildErrors(status, err)

	return Response{
		Status:      status,
		ContentType: "application/vnd.api+json; charset=utf-8",
		Body:        jsonAPIErrorResponse{Errors: apiErrors},
	}
}

func (f *JSONAPI) buildErrors(status int, err error) []jsonAPIError {
	var detailed ErrorDetails
	if !errors.As(err, &detailed) {
		apiErr := jsonAPIError{
			ID:     generateErrorID(),
			Status: strconv.Itoa(status),
			Title:  http.StatusText(status),
			Detail: err.Error(),
		}
		if coded, ok := err.(ErrorCode); ok {
			apiErr.Code = coded.Code()
		}
		return []jsonAPIError{apiErr}
	}

	fieldErrors, ok := asFieldSlice(detailed.Details())
	if !ok || len(fieldErrors) == 0 {
		return []jsonAPIError{{
			ID:     generateErrorID(),
			Status: strconv.Itoa(status),
			Title:  http.StatusText(status),
			Detail: err.Error(),
			Meta:   map[string]any{"details": detailed.Details()},
		}}
	}

	apiErrors := make([]jsonAPIError, 0, len(fieldErrors))
	for _, field := range fieldErrors {
		apiErr := jsonAPIError{
			ID:     generateErrorID(),
			Status: strconv.Itoa(status),
			Title:  http.StatusText(status),
		}
		if path, ok := field["path"].(string); ok && path != "" {
			apiErr.Source = &jsonAPISource{Pointer: convertPathToPointer(path)}
		}
		if code, ok := field["code"].(string); ok && code != "" {
			apiErr.Code = code
		}
		if message, ok := field["message"].(string); ok && message != "" {
			apiErr.Detail = message
		}
		if meta, ok := field["meta"].(map[string]any); ok && len(meta) > 0 {
			apiErr.Meta = meta
		}
		if apiErr.Detail == "" {
			apiErr.Detail = err.Error()
		}
		apiErrors = append(apiErrors, apiErr)
	}
	return apiErrors
}

// asFieldSlice round-trips details through JSON so both []map[string]string
// (ValidationError.Details' concrete shape) and arbitrary []any field
// descriptions are normalized to the same map shape.
func asFieldSlice(details any) ([]map[string]any, bool) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, false
	}
	var fields []map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func (f *JSONAPI) determineStatus(err error) int {
	if f.StatusResolver != nil {
		return f.StatusResolver(err)
	}
	var typed ErrorType
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// convertPathToPointer turns a dotted field path into a JSON Pointer
// rooted at /data/attributes, e.g. "items.0.price" -> "/data/attributes/items/0/price".
func convertPathToPointer(path string) string {
	if path == "" {
		return ""
	}
	return "/data/attributes/" + strings.ReplaceAll(path, ".", "/")
}
