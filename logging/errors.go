// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package logging

import "errors"

var (
	// ErrNilLogger reports a nil custom logger. No function in this package
	// returns it.
	ErrNilLogger = errors.New("logging: custom logger cannot be nil")
	// ErrEmptyServiceName is returned by New when the service name is unset.
	ErrEmptyServiceName = errors.New("logging: service name cannot be empty")
)
