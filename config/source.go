// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// Source loads a layer of configuration data. Load must be safe to call
// concurrently; implementations should not retain the returned map.
type Source interface {
	Load(ctx context.Context) (map[string]any, error)
}

// mapSource is a pre-built layer, used for WithDefaults/WithOverrides.
type mapSource struct {
	values map[string]any
}

func (s mapSource) Load(context.Context) (map[string]any, error) {
	return s.values, nil
}

// fileSource decodes a file whose format is chosen by extension (or
// forced via codecType).
type fileSource struct {
	path      string
	codecType Type
}

func (s fileSource) Load(context.Context) (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	codecType := s.codecType
	if codecType == "" {
		codecType, err = detectType(s.path)
		if err != nil {
			return nil, err
		}
	}
	return decode(codecType, data)
}

// envSource reads environment variables sharing prefix, mapping the
// "__" separator to dotted nesting: A__B__C=v -> {a: {b: {c: v}}}.
type envSource struct {
	prefix string
}

func (s envSource) Load(context.Context) (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, s.prefix) {
			continue
		}
		trimmed := strings.TrimPrefix(key, s.prefix)
		if trimmed == "" {
			continue
		}
		path := strings.Split(strings.ToLower(trimmed), "__")
		setNested(out, path, value)
	}
	return out, nil
}

func setNested(m map[string]any, path []string, value string) {
	for i, segment := range path {
		if i == len(path)-1 {
			m[segment] = value
			return
		}
		next, ok := m[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[segment] = next
		}
		m = next
	}
}

// Type names a supported serialization format.
type Type string

const (
	TypeJSON Type = "json"
	TypeYAML Type = "yaml"
	TypeTOML Type = "toml"
)

func detectType(path string) (Type, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return TypeJSON, nil
	case ".yaml", ".yml":
		return TypeYAML, nil
	case ".toml":
		return TypeTOML, nil
	default:
		return "", newError(path, "detect-format", os.ErrInvalid)
	}
}
