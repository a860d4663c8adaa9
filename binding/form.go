// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package binding

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const defaultTag = "form"

// decodeValues flattens url.Values (single-valued fields collapse to a
// scalar, repeated fields stay a []string) and decodes into dst via
// mapstructure, matching on the given struct tag ("form" when tag is empty).
func decodeValues(values url.Values, dst any, tag string) error {
	if err := checkDestination(dst); err != nil {
		return err
	}
	if tag == "" {
		tag = defaultTag
	}
	flat := make(map[string]any, len(values))
	for k, v := range values {
		switch len(v) {
		case 0:
			continue
		case 1:
			flat[k] = v[0]
		default:
			flat[k] = v
		}
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tag,
		WeaklyTypedInput: true,
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("binding: build decoder: %w", err)
	}
	if err := decoder.Decode(flat); err != nil {
		return fmt.Errorf("binding: decode form values: %w", err)
	}
	return nil
}

// Query decodes request URL query parameters into dst.
func Query(values url.Values, dst any) error {
	return decodeValues(values, dst, "query")
}

// Form decodes application/x-www-form-urlencoded or already-parsed
// multipart form values into dst.
func Form(values url.Values, dst any) error {
	return decodeValues(values, dst, "form")
}
