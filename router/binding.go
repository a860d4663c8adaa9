// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rivaas-dev/engine/binding"
	"github.com/rivaas-dev/engine/validation"
)

// DefaultMaxBodySize bounds request bodies read by BindJSON, BindXML and
// BindMsgPack when the Router was not configured with WithMaxBodySize.
const DefaultMaxBodySize int64 = 10 << 20 // 10 MiB

// WithMaxBodySize caps the number of bytes BindJSON, BindXML and
// BindMsgPack read from a request body before returning ErrBodyTooLarge.
// BindForm and BindMultipart do not apply this cap.
func WithMaxBodySize(n int64) Option {
	return func(r *Router) { r.maxBodySize = n }
}

func (c *Context) bodyReader() io.Reader {
	max := c.router.maxBodySize
	if max <= 0 {
		max = DefaultMaxBodySize
	}
	return http.MaxBytesReader(c.Response, c.Request.Body, max)
}

func translateBindErr(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrBodyTooLarge
	}
	return err
}

func (c *Context) validateAfterBind(dst any) error {
	fields, ok := validation.FieldErrors(dst)
	if ok {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// BindJSON decodes a JSON body into dst and validates its struct tags.
func (c *Context) BindJSON(dst any) error {
	if err := binding.JSON(c.bodyReader(), dst); err != nil {
		return translateBindErr(err)
	}
	return c.validateAfterBind(dst)
}

// BindXML decodes an XML body into dst and validates its struct tags.
func (c *Context) BindXML(dst any) error {
	if err := binding.XML(c.bodyReader(), dst); err != nil {
		return translateBindErr(err)
	}
	return c.validateAfterBind(dst)
}

// BindMsgPack decodes a MessagePack body into dst and validates its
// struct tags.
func (c *Context) BindMsgPack(dst any) error {
	if err := binding.MsgPack(c.bodyReader(), dst); err != nil {
		return translateBindErr(err)
	}
	return c.validateAfterBind(dst)
}

// BindQuery decodes URL query parameters into dst and validates its
// struct tags.
func (c *Context) BindQuery(dst any) error {
	if err := binding.Query(c.Request.URL.Query(), dst); err != nil {
		return err
	}
	return c.validateAfterBind(dst)
}

// BindForm decodes application/x-www-form-urlencoded values into dst and
// validates its struct tags.
func (c *Context) BindForm(dst any) error {
	if err := c.Request.ParseForm(); err != nil {
		return translateBindErr(err)
	}
	if err := binding.Form(c.Request.PostForm, dst); err != nil {
		return err
	}
	return c.validateAfterBind(dst)
}

// BindMultipart decodes a multipart/form-data body into dst, returning any
// uploaded files alongside. maxMemory bounds in-memory buffering before
// spilling to temp files, matching multipart.Reader semantics.
func (c *Context) BindMultipart(dst any, maxMemory int64) (map[string][]*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
		return nil, translateBindErr(err)
	}
	files, err := binding.Multipart(c.Request.MultipartForm, dst)
	if err != nil {
		return nil, err
	}
	if err := c.validateAfterBind(dst); err != nil {
		return files, err
	}
	return files, nil
}

// Negotiator note: content negotiation lives in accept.go; Conditional
// evaluation lives in conditional.go.
