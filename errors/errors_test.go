// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "github.com/rivaas-dev/engine/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldError struct {
	Fields map[string]string
}

func (e *fieldError) Error() string   { return "validation failed" }
func (e *fieldError) HTTPStatus() int { return http.StatusUnprocessableEntity }
func (e *fieldError) Details() any {
	out := make([]map[string]string, 0, len(e.Fields))
	for path, msg := range e.Fields {
		out = append(out, map[string]string{"path": path, "message": msg})
	}
	return out
}

func newReq() *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/users", nil)
}

func TestSimple_UnknownErrorMapsTo500(t *testing.T) {
	f := apierrors.NewSimple()
	resp := f.Format(newReq(), errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "application/json; charset=utf-8", resp.ContentType)
	body := resp.Body.(map[string]any)
	assert.Equal(t, "boom", body["error"])
}

func TestSimple_TypedErrorUsesHTTPStatus(t *testing.T) {
	f := apierrors.NewSimple()
	resp := f.Format(newReq(), &fieldError{Fields: map[string]string{"email": "required"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	body := resp.Body.(map[string]any)
	assert.NotEmpty(t, body["details"])
}

func TestRFC9457_BodyIncludesTypeAndErrorID(t *testing.T) {
	f := apierrors.NewRFC9457("https://errors.example.com")
	resp := f.Format(newReq(), &fieldError{Fields: map[string]string{"email": "required"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "application/problem+json; charset=utf-8", resp.ContentType)

	raw, err := json.Marshal(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "about:blank", decoded["type"])
	assert.NotEmpty(t, decoded["error_id"])
	assert.NotEmpty(t, decoded["errors"])
}

func TestRFC9457_DisableErrorID(t *testing.T) {
	f := apierrors.NewRFC9457("")
	f.DisableErrorID = true
	resp := f.Format(newReq(), errors.New("boom"))

	raw, err := json.Marshal(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	_, present := decoded["error_id"]
	assert.False(t, present)
}

func TestJSONAPI_FieldErrorsGetJSONPointerSource(t *testing.T) {
	f := apierrors.NewJSONAPI()
	resp := f.Format(newReq(), &fieldError{Fields: map[string]string{"items.0.price": "must be positive"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Equal(t, "application/vnd.api+json; charset=utf-8", resp.ContentType)

	raw, err := json.Marshal(resp.Body)
	require.NoError(t, err)
	var decoded struct {
		Errors []struct {
			Detail string `json:"detail"`
			Source struct {
				Pointer string `json:"pointer"`
			} `json:"source"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "/data/attributes/items/0/price", decoded.Errors[0].Source.Pointer)
	assert.Equal(t, "must be positive", decoded.Errors[0].Detail)
}

func TestWithStatus_NilErrorUsesStatusText(t *testing.T) {
	err := apierrors.WithStatus(nil, http.StatusNoContent)
	assert.Equal(t, http.StatusText(http.StatusNoContent), err.Error())

	var typed apierrors.ErrorType
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, http.StatusNoContent, typed.HTTPStatus())
}
