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

	"go.opentelemetry.io/otel/trace"
)

const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// ContextLogger binds a *slog.Logger to a context, automatically adding
// trace_id/span_id fields when ctx carries an active OpenTelemetry span.
type ContextLogger struct {
	logger  *slog.Logger
	ctx     context.Context
	traceID string
	spanID  string
}

// NewContextLogger derives a ContextLogger from logger and ctx.
func NewContextLogger(ctx context.Context, logger *Logger) *ContextLogger {
	sl := logger.Logger()

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		traceID := sc.TraceID().String()
		spanID := sc.SpanID().String()
		return &ContextLogger{
			logger:  sl.With(fieldTraceID, traceID, fieldSpanID, spanID),
			ctx:     ctx,
			traceID: traceID,
			spanID:  spanID,
		}
	}
	return &ContextLogger{logger: sl, ctx: ctx}
}

// Logger returns the underlying *slog.Logger.
func (cl *ContextLogger) Logger() *slog.Logger { return cl.logger }

// TraceID returns the active trace id, or "" if none.
func (cl *ContextLogger) TraceID() string { return cl.traceID }

// SpanID returns the active span id, or "" if none.
func (cl *ContextLogger) SpanID() string { return cl.spanID }

func (cl *ContextLogger) Debug(msg string, args ...any) { cl.logger.DebugContext(cl.ctx, msg, args...) }
func (cl *ContextLogger) Info(msg string, args ...any)  { cl.logger.InfoContext(cl.ctx, msg, args...) }
func (cl *ContextLogger) Warn(msg string, args ...any)  { cl.logger.WarnContext(cl.ctx, msg, args...) }
func (cl *ContextLogger) Error(msg string, args ...any) { cl.logger.ErrorContext(cl.ctx, msg, args...) }
