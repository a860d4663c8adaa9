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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PrecedenceOrder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9090\n  host: fromfile\n"), 0o644))

	t.Setenv("RTEST_SERVER__PORT", "9191")

	c := MustNew(
		WithDefaults(map[string]any{"server": map[string]any{"port": 8080, "host": "fromdefault"}}),
		WithFile(file),
		WithEnv("RTEST_"),
	)
	require.NoError(t, Load(context.Background(), c))

	assert.Equal(t, "9191", Get[string](c, "server.port"))
	assert.Equal(t, "fromfile", Get[string](c, "server.host"))
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	t.Setenv("RTEST2_FEATURE", "false")

	c := MustNew(
		WithEnv("RTEST2_"),
		WithOverrides(map[string]any{"feature": "true"}),
	)
	require.NoError(t, Load(context.Background(), c))

	assert.True(t, Get[bool](c, "feature"))
}

func TestGetOr_MissingKeyReturnsDefault(t *testing.T) {
	t.Parallel()

	c := MustNew()
	require.NoError(t, Load(context.Background(), c))

	assert.Equal(t, 30*time.Second, GetOr(c, "timeout", 30*time.Second))
}

func TestBind_AppliesDefaultsAndDecodesNested(t *testing.T) {
	t.Parallel()

	type serverConfig struct {
		Port int           `config:"port" default:"8080"`
		Host string        `config:"host" default:"localhost"`
		TTL  time.Duration `config:"ttl" default:"5s"`
	}
	type appConfig struct {
		Server serverConfig `config:"server"`
	}

	c := MustNew(WithDefaults(map[string]any{"server": map[string]any{"host": "override.example"}}))
	require.NoError(t, Load(context.Background(), c))

	var cfg appConfig
	require.NoError(t, c.Bind(&cfg))

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "override.example", cfg.Server.Host)
	assert.Equal(t, 5*time.Second, cfg.Server.TTL)
}

func TestWithFile_MissingFileIsEmptyLayer(t *testing.T) {
	t.Parallel()

	c := MustNew(WithFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.NoError(t, Load(context.Background(), c))
}

func TestLoad_NilContext(t *testing.T) {
	t.Parallel()

	c := MustNew()
	err := Load(nil, c) //nolint:staticcheck
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestWithJSONSchema_RejectsInvalidTree(t *testing.T) {
	t.Parallel()

	schema := []byte(`{
		"type": "object",
		"properties": {"port": {"type": "integer"}},
		"required": ["port"]
	}`)
	c, err := New(
		WithDefaults(map[string]any{"host": "localhost"}),
		WithJSONSchema("mem://app.schema.json", schema),
	)
	require.NoError(t, err)

	err = Load(context.Background(), c)
	require.Error(t, err)
}
