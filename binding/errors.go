// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package binding decodes HTTP request bodies and query/form values into
// typed destinations, backed by explicit per-source decoders rather than
// a single reflective dispatcher.
package binding

import "errors"

var (
	// ErrNilDestination is returned when a Bind* call receives a nil
	// destination pointer.
	ErrNilDestination = errors.New("binding: destination is nil")

	// ErrNotPointer is returned when the destination is not a non-nil
	// pointer. The pointed-to type is not checked.
	ErrNotPointer = errors.New("binding: destination must be a pointer to a struct")

	// ErrEmptyBody is returned by JSON/XML/YAML/MsgPack when the request
	// body is empty, and by Multipart when the form is nil.
	ErrEmptyBody = errors.New("binding: request body is empty")

	// ErrBodyTooLarge is returned when the body exceeds the configured
	// maximum.
	ErrBodyTooLarge = errors.New("binding: request body exceeds maximum size")

	// ErrMultipleJSONValues is returned by JSON when the body
	// contains trailing non-whitespace after the first JSON value.
	ErrMultipleJSONValues = errors.New("binding: body contains multiple JSON values")

	// ErrUnsupportedContentType is returned when no decoder matches the
	// request's Content-Type.
	ErrUnsupportedContentType = errors.New("binding: unsupported content type")
)
