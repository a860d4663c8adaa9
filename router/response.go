// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package router

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"os"
)

// Status writes the response status line without a body. Safe to call
// before any body-writing method; subsequent WriteHeader calls from those
// methods are no-ops per the wrapping responseWriter.
func (c *Context) Status(code int) { c.Response.WriteHeader(code) }

// JSON encodes value as the response body with Content-Type
// application/json, after writing statusCode.
func (c *Context) JSON(statusCode int, value any) error {
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(statusCode)
	if c.Request.Method == http.MethodHead {
		return nil
	}
	return json.NewEncoder(c.Response).Encode(value)
}

// XML encodes value as the response body with Content-Type
// application/xml.
func (c *Context) XML(statusCode int, value any) error {
	c.Response.Header().Set("Content-Type", "application/xml; charset=utf-8")
	c.Response.WriteHeader(statusCode)
	if c.Request.Method == http.MethodHead {
		return nil
	}
	return xml.NewEncoder(c.Response).Encode(value)
}

// String writes text as the response body with Content-Type text/plain.
func (c *Context) String(statusCode int, text string) error {
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(statusCode)
	if c.Request.Method == http.MethodHead {
		return nil
	}
	_, err := io.WriteString(c.Response, text)
	return err
}

// HTML writes html as the response body with Content-Type text/html.
func (c *Context) HTML(statusCode int, html string) error {
	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response.WriteHeader(statusCode)
	if c.Request.Method == http.MethodHead {
		return nil
	}
	_, err := io.WriteString(c.Response, html)
	return err
}

// TemplateRenderer renders a named template with data into w. The router
// package does not implement a template engine (out of scope); an
// implementation is installed on the Router via WithTemplateRenderer.
type TemplateRenderer interface {
	Render(w io.Writer, name string, data any) error
}

// Template renders name via the configured TemplateRenderer. Returns
// ErrUnsupportedMediaType if no renderer is installed.
func (c *Context) Template(statusCode int, name string, data any) error {
	if c.router.templates == nil {
		return ErrUnsupportedMediaType
	}
	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response.WriteHeader(statusCode)
	return c.router.templates.Render(c.Response, name, data)
}

// File streams a filesystem path as the response body, relying on
// http.ServeContent for Range/If-Modified-Since handling.
func (c *Context) File(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return err
	}
	http.ServeContent(c.Response, c.Request, stat.Name(), stat.ModTime(), f)
	return nil
}

// Stream copies src to the response body with the given content type,
// flushing incrementally when the underlying writer supports it.
func (c *Context) Stream(statusCode int, contentType string, src io.Reader) error {
	c.Response.Header().Set("Content-Type", contentType)
	c.Response.WriteHeader(statusCode)
	flusher, canFlush := c.Response.(http.Flusher)
	buf := make([]byte, 32*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := c.Response.Write(buf[:n]); werr != nil {
				return werr
			}
			if canFlush {
				flusher.Flush()
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// Redirect writes a redirect response. code defaults to 302 when zero.
func (c *Context) Redirect(code int, url string) {
	if code == 0 {
		code = http.StatusFound
	}
	http.Redirect(c.Response, c.Request, url, code)
}

// NoContent writes a 204 response with no body.
func (c *Context) NoContent() { c.Response.WriteHeader(http.StatusNoContent) }

// Hijack exposes the underlying connection for protocol upgrades. Returns
// ErrResponseWriterNotHijacker if unsupported.
func (c *Context) Hijack() (conn io.ReadWriteCloser, err error) {
	hj, ok := c.Response.(http.Hijacker)
	if !ok {
		return nil, ErrResponseWriterNotHijacker
	}
	netConn, _, err := hj.Hijack()
	return netConn, err
}
