// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Get returns the dotted key as type T, or T's zero value if the key is
// absent or not convertible.
func Get[T any](c *Config, key string) T {
	var zero T
	v, ok := GetE[T](c, key)
	if ok != nil {
		return zero
	}
	return v
}

// GetOr returns the dotted key as type T, or def if absent/not
// convertible. T is inferred from def.
func GetOr[T any](c *Config, key string, def T) T {
	v, err := GetE[T](c, key)
	if err != nil {
		return def
	}
	return v
}

// GetE returns the dotted key as type T, or an error naming the key when
// it is absent or cannot be converted.
func GetE[T any](c *Config, key string) (T, error) {
	var zero T
	if c == nil {
		return zero, fmt.Errorf("config: nil Config")
	}
	raw := c.Get(key)
	if raw == nil {
		return zero, fmt.Errorf("config: key %q not found", key)
	}
	if v, ok := raw.(T); ok {
		return v, nil
	}
	v, ok := coerce[T](raw)
	if !ok {
		return zero, fmt.Errorf("config: cannot convert key %q to %T", key, zero)
	}
	return v, nil
}

func coerce[T any](raw any) (T, bool) {
	var zero T
	var result any
	switch any(zero).(type) {
	case string:
		result = cast.ToString(raw)
	case int:
		result = cast.ToInt(raw)
	case int64:
		result = cast.ToInt64(raw)
	case int32:
		result = cast.ToInt32(raw)
	case uint:
		result = cast.ToUint(raw)
	case uint64:
		result = cast.ToUint64(raw)
	case float64:
		result = cast.ToFloat64(raw)
	case float32:
		result = cast.ToFloat32(raw)
	case bool:
		result = cast.ToBool(raw)
	case []string:
		result = cast.ToStringSlice(raw)
	case map[string]any:
		result = cast.ToStringMap(raw)
	case map[string]string:
		result = cast.ToStringMapString(raw)
	case time.Duration:
		result = cast.ToDuration(raw)
	case time.Time:
		result = cast.ToTime(raw)
	default:
		return zero, false
	}
	typed, ok := result.(T)
	return typed, ok
}
