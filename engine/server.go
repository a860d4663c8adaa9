// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package engine

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
)

// startFunc is the ListenAndServe-shaped function the server goroutine
// runs; it differs between Serve and ServeTLS only in which method of
// *http.Server it calls.
type startFunc func() error

// Serve builds the HTTP server from the engine's configuration, starts it
// in a background goroutine, and blocks until ctx is canceled or a signal
// the shutdown controller watches is received, then drains and closes.
// Build must have been called first.
func (e *Engine) Serve(ctx context.Context, addr string) error {
	if !e.Built() {
		return fmt.Errorf("engine: Build must be called before Serve")
	}
	if addr == "" {
		addr = e.cfg.ListenAddr()
	}
	server := e.router.NewServer(addr, nil)
	return e.run(ctx, server, server.ListenAndServe, "http")
}

// ServeTLS is Serve over TLS, terminating with certFile/keyFile.
func (e *Engine) ServeTLS(ctx context.Context, addr, certFile, keyFile string) error {
	if !e.Built() {
		return fmt.Errorf("engine: Build must be called before ServeTLS")
	}
	if addr == "" {
		addr = e.cfg.ListenAddr()
	}
	server := e.router.NewServer(addr, &tls.Config{MinVersion: tls.VersionTLS12})
	return e.run(ctx, server, func() error {
		return server.ListenAndServeTLS(certFile, keyFile)
	}, "https")
}

func (e *Engine) run(ctx context.Context, server *http.Server, start startFunc, protocol string) error {
	logger := e.logger.Logger()

	e.printBanner(server.Addr, protocol)
	if err := e.logger.FlushBuffer(); err != nil {
		logger.Warn("flushing buffered startup logs", "error", err)
	}

	if err := e.hooks.executeStart(ctx); err != nil {
		return fmt.Errorf("engine: startup failed: %w", err)
	}

	serverErr := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		if err := start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	<-ready
	e.state.Store(int32(stateServing))
	logger.Info("server started", "addr", server.Addr, "protocol", protocol)
	e.hooks.executeReady(logger)

	e.shutdownCtl.OnShutdown(func(shutdownCtx context.Context) {
		logger.Info("shutdown initiated, draining")
	})

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go e.shutdownCtl.Watch(watchCtx)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("engine: server error: %w", err)
		}
	case <-ctx.Done():
		e.shutdownCtl.Trigger(nil)
	case <-e.shutdownCtl.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), e.cfg.ShutdownTimeout)
	defer cancel()

	e.hooks.executeShutdown(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown did not complete cleanly", "error", err)
	}

	if err := e.providers.Stop(shutdownCtx); err != nil {
		logger.Warn("provider shutdown reported errors", "error", err)
	}

	e.hooks.executeStop(logger)
	logger.Info("server exited", "forced", e.shutdownCtl.Forced())
	return nil
}
