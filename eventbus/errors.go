// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package eventbus implements a process-wide typed publish/subscribe bus
// and named Signals built on top of it, with sender scoping,
// de-duplication keys, and safe handler invocation.
package eventbus

import "fmt"

// UnhandledSignalError wraps a panic recovered from a subscriber handler.
// It is never allowed to propagate into the publisher's call stack;
// instead it is delivered to any subscribers registered for
// UnhandledSignalError itself.
type UnhandledSignalError struct {
	Name   string
	Event  any
	Key    string
	Sender any
	Err    error
	Stack  []byte
}

func (e *UnhandledSignalError) Error() string {
	return fmt.Sprintf("eventbus: unhandled panic in subscriber for %q: %v", e.Name, e.Err)
}

func (e *UnhandledSignalError) Unwrap() error { return e.Err }
