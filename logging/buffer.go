// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package logging

import (
	"context"
	"log/slog"
	"sync"
)

type bufferedRecord struct {
	ctx    context.Context
	record slog.Record
}

// bufferState is shared by a bufferingHandler and every handler derived
// from it via WithAttrs/WithGroup, so buffering toggles and captured
// records apply regardless of which derived logger wrote them.
type bufferState struct {
	mu        sync.Mutex
	buffering bool
	records   []bufferedRecord
}

func (s *bufferState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffering = true
}

func (s *bufferState) capture(ctx context.Context, r slog.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.buffering {
		return false
	}
	s.records = append(s.records, bufferedRecord{ctx: ctx, record: r.Clone()})
	return true
}

func (s *bufferState) flush(underlying slog.Handler) error {
	s.mu.Lock()
	records := s.records
	s.records = make([]bufferedRecord, 0, 32)
	s.buffering = false
	s.mu.Unlock()

	for _, rec := range records {
		if err := underlying.Handle(rec.ctx, rec.record); err != nil {
			return err
		}
	}
	return nil
}

// bufferingHandler wraps a slog.Handler to capture records in memory
// during engine startup, so a banner can print before the boot log
// stream; FlushBuffer later replays everything captured in order.
type bufferingHandler struct {
	underlying slog.Handler
	state      *bufferState
}

func newBufferingHandler(h slog.Handler) *bufferingHandler {
	return &bufferingHandler{underlying: h, state: &bufferState{records: make([]bufferedRecord, 0, 32)}}
}

func (h *bufferingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.underlying.Enabled(ctx, level)
}

func (h *bufferingHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.state.capture(ctx, r) {
		return nil
	}
	return h.underlying.Handle(ctx, r)
}

func (h *bufferingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &bufferingHandler{underlying: h.underlying.WithAttrs(attrs), state: h.state}
}

func (h *bufferingHandler) WithGroup(name string) slog.Handler {
	return &bufferingHandler{underlying: h.underlying.WithGroup(name), state: h.state}
}

// StartBuffering enables in-memory log capture; subsequent records are
// held instead of written until FlushBuffer is called.
func (l *Logger) StartBuffering() {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.slogger.Load()
	if current == nil {
		return
	}
	if bh, ok := current.Handler().(*bufferingHandler); ok {
		bh.state.start()
		return
	}
	bh := newBufferingHandler(current.Handler())
	bh.state.start()
	next := slog.New(bh)
	l.slogger.Store(next)
	if l.registerGlobal {
		slog.SetDefault(next)
	}
}

// FlushBuffer replays every record captured since StartBuffering, in
// order, then disables buffering. A no-op if buffering was never
// started.
func (l *Logger) FlushBuffer() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.slogger.Load()
	if current == nil {
		return nil
	}
	bh, ok := current.Handler().(*bufferingHandler)
	if !ok {
		return nil
	}
	return bh.state.flush(bh.underlying)
}

// IsBuffering reports whether StartBuffering is active.
func (l *Logger) IsBuffering() bool {
	current := l.slogger.Load()
	if current == nil {
		return false
	}
	bh, ok := current.Handler().(*bufferingHandler)
	if !ok {
		return false
	}
	bh.state.mu.Lock()
	defer bh.state.mu.Unlock()
	return bh.state.buffering
}
