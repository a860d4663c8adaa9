// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package logging wraps log/slog with the Engine's conventions: a
// handler chosen per environment (JSON for production, a colored console
// handler for development), a dynamically adjustable level, and a
// startup buffer so early boot logs can be replayed after a banner
// is printed.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

// HandlerType selects the slog.Handler backing a Logger.
type HandlerType string

const (
	JSONHandler    HandlerType = "json"
	TextHandler    HandlerType = "text"
	ConsoleHandler HandlerType = "console"
)

// Level is an alias of slog.Level so callers don't need to import log/slog.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger wraps a dynamically reconfigurable *slog.Logger. The zero value
// is not usable; construct with New/MustNew.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	levelVar    *slog.LevelVar

	serviceName    string
	serviceVersion string
	environment    string
	addSource      bool

	registerGlobal bool

	slogger  atomic.Pointer[slog.Logger]
	charmLog *charmlog.Logger // non-nil only when handlerType == ConsoleHandler
	mu       sync.Mutex
}

// Option configures a Logger during New.
type Option func(*Logger)

func WithHandlerType(t HandlerType) Option { return func(l *Logger) { l.handlerType = t } }
func WithOutput(w io.Writer) Option        { return func(l *Logger) { l.output = w } }
func WithLevel(level Level) Option         { return func(l *Logger) { l.levelVar.Set(level) } }
func WithAddSource(on bool) Option         { return func(l *Logger) { l.addSource = on } }
func WithGlobalLogger() Option             { return func(l *Logger) { l.registerGlobal = true } }

func WithServiceName(name string) Option    { return func(l *Logger) { l.serviceName = name } }
func WithServiceVersion(v string) Option    { return func(l *Logger) { l.serviceVersion = v } }
func WithEnvironment(env string) Option     { return func(l *Logger) { l.environment = env } }

func defaultLogger() *Logger {
	return &Logger{
		handlerType: JSONHandler,
		output:      os.Stdout,
		levelVar:    new(slog.LevelVar),
		environment: "development",
	}
}

// New builds a Logger from opts and initializes its handler.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}
	if l.serviceName == "" {
		return nil, ErrEmptyServiceName
	}
	if l.output == nil {
		return nil, errors.New("logging: output writer cannot be nil")
	}
	if err := l.buildHandler(); err != nil {
		return nil, err
	}
	return l, nil
}

// MustNew panics if New fails.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging: " + err.Error())
	}
	return l
}

func (l *Logger) buildHandler() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var handler slog.Handler
	switch l.handlerType {
	case JSONHandler:
		handler = slog.NewJSONHandler(l.output, &slog.HandlerOptions{Level: l.levelVar, AddSource: l.addSource})
	case TextHandler:
		handler = slog.NewTextHandler(l.output, &slog.HandlerOptions{Level: l.levelVar, AddSource: l.addSource})
	case ConsoleHandler:
		cl := charmlog.NewWithOptions(l.output, charmlog.Options{
			Level:           charmlog.Level(l.levelVar.Level()),
			ReportTimestamp: true,
			ReportCaller:    l.addSource,
		})
		l.charmLog = cl
		handler = cl
	default:
		return fmt.Errorf("logging: unknown handler type %q", l.handlerType)
	}

	sl := slog.New(handler).With(
		"service", l.serviceName,
		"version", l.serviceVersion,
		"env", l.environment,
	)
	l.slogger.Store(sl)
	if l.registerGlobal {
		slog.SetDefault(sl)
	}
	return nil
}

// Logger returns the underlying *slog.Logger, safe to call concurrently
// with SetLevel/StartBuffering/FlushBuffer.
func (l *Logger) Logger() *slog.Logger { return l.slogger.Load() }

// SetLevel dynamically changes the minimum level handled, taking effect
// for every *slog.Logger derived from this Logger (via With, WithGroup,
// etc.) since they all share the same underlying slog.LevelVar. The
// console handler keeps its own level field, so it is updated directly.
func (l *Logger) SetLevel(level Level) {
	l.levelVar.Set(level)
	if l.charmLog != nil {
		l.charmLog.SetLevel(charmlog.Level(level))
	}
}

// Level returns the currently active minimum level.
func (l *Logger) Level() Level { return l.levelVar.Level() }
