// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package container implements a dependency-injection registry with
// singleton, transient, and request scopes, producing per-request child
// scopes that own their own disposables.
package container

import "errors"

var (
	// ErrNotFound is returned by Make when no binding exists for key.
	ErrNotFound = errors.New("container: no binding for key")

	// ErrCircularSingleton is returned when resolving a singleton
	// re-enters its own factory.
	ErrCircularSingleton = errors.New("container: circular singleton construction")

	// ErrFrozen is returned when Bind/Singleton/Instance is called on a
	// container that has already produced a scope or resolved a binding.
	ErrFrozen = errors.New("container: cannot register bindings after first resolution")
)
