// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"errors"
	"fmt"
)

// ErrNilContext is returned by Load when called with a nil context.
var ErrNilContext = errors.New("config: context cannot be nil")

// Error wraps a configuration failure with the source and operation that
// produced it (e.g. "source[1]"/"load", "schema"/"validate", "bind"/"decode").
type Error struct {
	Source    string
	Field     string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config: %s.%s: %s: %v", e.Source, e.Field, e.Operation, e.Err)
	}
	return fmt.Sprintf("config: %s: %s: %v", e.Source, e.Operation, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(source, operation string, err error) *Error {
	return &Error{Source: source, Operation: operation, Err: err}
}

func newFieldError(source, field, operation string, err error) *Error {
	return &Error{Source: source, Field: field, Operation: operation, Err: err}
}
