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

	"github.com/hashicorp/consul/api"
)

// ConsulKV is the subset of the Consul API client consulSource needs,
// narrowed for testability.
type ConsulKV interface {
	Get(key string, q *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
}

// consulSource loads a single KV entry from Consul and decodes it as
// codecType (or, if unset, JSON).
type consulSource struct {
	kv        ConsulKV
	key       string
	codecType Type
}

// NewConsulSource builds a Source that reads key from a Consul KV store
// and decodes its value as codecType. A nil client dials Consul with
// api.DefaultConfig(); pass a fake ConsulKV in tests.
func NewConsulSource(key string, codecType Type, client ConsulKV) (Source, error) {
	if client == nil {
		c, err := api.NewClient(api.DefaultConfig())
		if err != nil {
			return nil, newError(key, "consul-client", err)
		}
		client = c.KV()
	}
	if codecType == "" {
		codecType = TypeJSON
	}
	return consulSource{kv: client, key: key, codecType: codecType}, nil
}

// Load fetches the KV pair and decodes it. A missing key is an empty
// layer, matching fileSource's treatment of a missing file.
func (s consulSource) Load(ctx context.Context) (map[string]any, error) {
	pair, _, err := s.kv.Get(s.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, newError(s.key, "consul-get", err)
	}
	if pair == nil {
		return map[string]any{}, nil
	}
	return decode(s.codecType, pair.Value)
}
