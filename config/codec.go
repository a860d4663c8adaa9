// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

func decode(t Type, data []byte) (map[string]any, error) {
	out := make(map[string]any)
	var err error
	switch t {
	case TypeJSON:
		err = json.Unmarshal(data, &out)
	case TypeYAML:
		err = yaml.Unmarshal(data, &out)
	case TypeTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&out)
	default:
		return nil, fmt.Errorf("config: unsupported format %q", t)
	}
	if err != nil {
		return nil, err
	}
	return normalizeKeys(out), nil
}

// normalizeKeys lowercases map keys recursively so lookups are
// case-insensitive, and folds map[any]any (a YAML decode artifact) into
// map[string]any.
func normalizeKeys(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		lk := strings.ToLower(k)
		if nested, ok := val.(map[string]any); ok {
			out[lk] = normalizeKeys(nested)
		} else if nested, ok := val.(map[any]any); ok {
			folded := make(map[string]any, len(nested))
			for nk, nv := range nested {
				folded[fmt.Sprint(nk)] = nv
			}
			out[lk] = normalizeKeys(folded)
		} else {
			out[lk] = val
		}
	}
	return out
}
