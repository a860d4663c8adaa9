// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package binding

import (
	"mime/multipart"
	"net/url"
)

// Multipart decodes the text fields of a parsed multipart form into dst
// using the "form" tag; file parts are returned separately since they
// rarely map onto plain struct fields.
func Multipart(form *multipart.Form, dst any) (files map[string][]*multipart.FileHeader, err error) {
	if form == nil {
		return nil, ErrEmptyBody
	}
	if err := decodeValues(url.Values(form.Value), dst, "form"); err != nil {
		return nil, err
	}
	return form.File, nil
}
