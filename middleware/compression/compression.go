// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package compression negotiates and applies gzip or brotli response
// compression based on the request's Accept-Encoding header.
package compression

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/rivaas-dev/engine/router"
)

// Encoding identifies a negotiated compression algorithm.
type Encoding string

const (
	EncodingNone   Encoding = ""
	EncodingGzip   Encoding = "gzip"
	EncodingBrotli Encoding = "br"
)

// Option configures the compression middleware.
type Option func(*config)

type config struct {
	level            int
	minSize          int
	skipPaths        map[string]bool
	skipContentTypes []string
}

func defaultConfig() *config {
	return &config{
		level:     gzip.DefaultCompression,
		minSize:   1024,
		skipPaths: make(map[string]bool),
		skipContentTypes: []string{
			"text/event-stream",
			"application/grpc",
			"application/octet-stream",
		},
	}
}

// WithLevel sets the compression level, per compress/gzip constants.
// Default gzip.DefaultCompression.
func WithLevel(level int) Option { return func(cfg *config) { cfg.level = level } }

// WithMinSize sets the response size, in bytes, below which compression
// is skipped. Default 1024.
func WithMinSize(bytes int) Option { return func(cfg *config) { cfg.minSize = bytes } }

// WithSkipPaths exempts exact paths from compression.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// WithSkipContentTypes overrides the content-type prefixes exempt from
// compression (e.g. already-compressed or streaming formats).
func WithSkipContentTypes(types ...string) Option {
	return func(cfg *config) { cfg.skipContentTypes = types }
}

var gzipPools sync.Map // int -> *sync.Pool of *gzip.Writer
var brotliPools sync.Map // int -> *sync.Pool of *brotli.Writer

func gzipWriter(level int, w *compressWriter) *gzip.Writer {
	poolAny, _ := gzipPools.LoadOrStore(level, &sync.Pool{
		New: func() any {
			gw, err := gzip.NewWriterLevel(nil, level)
			if err != nil {
				gw, _ = gzip.NewWriterLevel(nil, gzip.DefaultCompression)
			}
			return gw
		},
	})
	pool := poolAny.(*sync.Pool)
	gw := pool.Get().(*gzip.Writer)
	gw.Reset(w)
	return gw
}

func putGzipWriter(level int, gw *gzip.Writer) {
	poolAny, ok := gzipPools.Load(level)
	if !ok {
		return
	}
	poolAny.(*sync.Pool).Put(gw)
}

func brotliWriter(level int, w *compressWriter) *brotli.Writer {
	poolAny, _ := brotliPools.LoadOrStore(level, &sync.Pool{
		New: func() any { return brotli.NewWriterLevel(nil, brotliLevel(level)) },
	})
	pool := poolAny.(*sync.Pool)
	bw := pool.Get().(*brotli.Writer)
	bw.Reset(w)
	return bw
}

func putBrotliWriter(level int, bw *brotli.Writer) {
	poolAny, ok := brotliPools.Load(level)
	if !ok {
		return
	}
	poolAny.(*sync.Pool).Put(bw)
}

// brotliLevel maps a gzip-style 1-9 level onto brotli's 0-11 range.
func brotliLevel(gzipLevel int) int {
	switch {
	case gzipLevel <= gzip.NoCompression:
		return 0
	case gzipLevel >= gzip.BestCompression:
		return 11
	default:
		return gzipLevel
	}
}

// chooseEncoding parses Accept-Encoding and picks the best supported
// algorithm, preferring brotli when quality values tie.
func chooseEncoding(header string) Encoding {
	if header == "" {
		return EncodingNone
	}

	type candidate struct {
		enc Encoding
		q   float64
	}
	var candidates []candidate

	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, q := parseQValue(part)
		var enc Encoding
		switch name {
		case "br":
			enc = EncodingBrotli
		case "gzip":
			enc = EncodingGzip
		case "*":
			enc = EncodingGzip
		default:
			continue
		}
		if q <= 0 {
			continue
		}
		candidates = append(candidates, candidate{enc, q})
	}

	best := EncodingNone
	bestQ := -1.0
	for _, c := range candidates {
		if c.q > bestQ || (c.q == bestQ && c.enc == EncodingBrotli) {
			best = c.enc
			bestQ = c.q
		}
	}
	return best
}

func parseQValue(part string) (name string, q float64) {
	q = 1.0
	segs := strings.Split(part, ";")
	name = strings.TrimSpace(segs[0])
	for _, seg := range segs[1:] {
		seg = strings.TrimSpace(seg)
		if v, ok := strings.CutPrefix(seg, "q="); ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				q = parsed
			}
		}
	}
	return name, q
}

func skipContentType(contentType string, skip []string) bool {
	for _, prefix := range skip {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// compressWriter buffers the response until minSize bytes have been
// written or the handler finishes, deciding at that point whether
// compression is worthwhile, then streams the rest through the chosen
// encoder.
type compressWriter struct {
	http.ResponseWriter
	cfg         *config
	encoding    Encoding
	buf         []byte
	status      int
	wroteHeader bool
	decided     bool
	gz          *gzip.Writer
	br          *brotli.Writer
}

func (w *compressWriter) WriteHeader(status int) {
	w.status = status
	w.wroteHeader = true
}

func (w *compressWriter) Write(p []byte) (int, error) {
	if w.decided {
		return w.writeCompressed(p)
	}

	w.buf = append(w.buf, p...)
	if len(w.buf) < w.cfg.minSize {
		return len(p), nil
	}
	return len(p), w.decide()
}

func (w *compressWriter) decide() error {
	w.decided = true
	contentType := w.Header().Get("Content-Type")
	noBody := w.status == http.StatusNoContent || w.status == http.StatusNotModified || w.status == http.StatusPartialContent

	if w.encoding == EncodingNone || noBody || len(w.buf) < w.cfg.minSize || skipContentType(contentType, w.cfg.skipContentTypes) {
		w.flushUncompressed()
		return nil
	}

	w.Header().Del("Content-Length")
	w.Header().Set("Content-Encoding", string(w.encoding))
	w.Header().Add("Vary", "Accept-Encoding")
	w.flushStatus()

	switch w.encoding {
	case EncodingGzip:
		w.gz = gzipWriter(w.cfg.level, w)
		_, err := w.gz.Write(w.buf)
		return err
	case EncodingBrotli:
		w.br = brotliWriter(w.cfg.level, w)
		_, err := w.br.Write(w.buf)
		return err
	}
	return nil
}

func (w *compressWriter) flushUncompressed() {
	w.flushStatus()
	w.ResponseWriter.Write(w.buf)
}

func (w *compressWriter) flushStatus() {
	if w.wroteHeader {
		w.ResponseWriter.WriteHeader(w.status)
	}
}

func (w *compressWriter) writeCompressed(p []byte) (int, error) {
	switch {
	case w.gz != nil:
		return w.gz.Write(p)
	case w.br != nil:
		return w.br.Write(p)
	default:
		return w.ResponseWriter.Write(p)
	}
}

func (w *compressWriter) Close() error {
	if !w.decided {
		if err := w.decide(); err != nil {
			return err
		}
	}
	var err error
	if w.gz != nil {
		err = w.gz.Close()
		putGzipWriter(w.cfg.level, w.gz)
	}
	if w.br != nil {
		err = w.br.Close()
		putBrotliWriter(w.cfg.level, w.br)
	}
	return err
}

func (w *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("compression: underlying writer does not support hijacking")
	}
	return hj.Hijack()
}

func (w *compressWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// New returns a middleware that compresses responses with gzip or
// brotli according to the request's Accept-Encoding, skipping
// already-small responses, streaming content types, and configured
// exemptions.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		encoding := chooseEncoding(c.Request.Header.Get("Accept-Encoding"))
		if encoding == EncodingNone {
			c.Next()
			return
		}

		cw := &compressWriter{
			ResponseWriter: c.Response,
			cfg:            cfg,
			encoding:       encoding,
			status:         http.StatusOK,
		}
		c.Response = cw
		c.Next()
		cw.Close()
	}
}
