// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

// Package config resolves the Engine's configuration by deep-merging, in
// increasing precedence, provider defaults, config files, environment
// variables, and runtime overrides, then exposes it through a dotted-path
// accessor with typed coercion and optional struct binding/validation.
package config

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/cast"
)

// Option configures a Config during New.
type Option func(c *Config) error

// Config holds the resolved configuration tree and is safe for concurrent
// use. Load re-resolves all sources and atomically swaps the tree.
type Config struct {
	mu      sync.RWMutex
	values  map[string]any
	layers  []Source
	tagName string

	schema *jsonschema.Schema

	decoderOnce   sync.Once
	decoderConfig *mapstructure.DecoderConfig
}

// New builds a Config from options; layers are applied to Load in the
// order they were registered (later layers take precedence).
func New(options ...Option) (*Config, error) {
	c := &Config{values: map[string]any{}, tagName: "config"}
	var errs error
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			if errs == nil {
				errs = err
			} else {
				errs = fmt.Errorf("%w; %w", errs, err)
			}
		}
	}
	return c, errs
}

// MustNew panics if any option fails.
func MustNew(options ...Option) *Config {
	c, err := New(options...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return c
}

// WithDefaults adds a static layer of default values, lowest precedence.
func WithDefaults(values map[string]any) Option {
	return func(c *Config) error {
		c.layers = append(c.layers, mapSource{values: normalizeKeys(values)})
		return nil
	}
}

// WithFile loads path, detecting its format (.json/.yaml/.yml/.toml) from
// the extension. A missing file is treated as an empty layer.
func WithFile(path string) Option {
	return func(c *Config) error {
		c.layers = append(c.layers, fileSource{path: path})
		return nil
	}
}

// WithFileAs loads path using an explicit format, for extensionless files.
func WithFileAs(path string, t Type) Option {
	return func(c *Config) error {
		c.layers = append(c.layers, fileSource{path: path, codecType: t})
		return nil
	}
}

// WithEnv adds a layer sourced from environment variables carrying prefix.
// "__" in a variable name maps to dotted nesting: PREFIX_A__B=v -> a.b=v.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		c.layers = append(c.layers, envSource{prefix: prefix})
		return nil
	}
}

// WithOverrides adds a static layer above env vars, for runtime/CLI
// overrides (the highest-precedence source named in the merge order).
func WithOverrides(values map[string]any) Option {
	return func(c *Config) error {
		c.layers = append(c.layers, mapSource{values: normalizeKeys(values)})
		return nil
	}
}

// WithSource adds an arbitrary Source layer (e.g. a remote KV store).
func WithSource(src Source) Option {
	return func(c *Config) error {
		c.layers = append(c.layers, src)
		return nil
	}
}

// WithConsul adds a layer that reads key from a Consul KV store and
// decodes its value as codecType. Pass a nil client to dial Consul with
// api.DefaultConfig().
func WithConsul(key string, codecType Type, client ConsulKV) Option {
	return func(c *Config) error {
		src, err := NewConsulSource(key, codecType, client)
		if err != nil {
			return err
		}
		c.layers = append(c.layers, src)
		return nil
	}
}

// WithJSONSchema compiles schema (raw JSON Schema document bytes) and
// arms Load to validate the merged tree against it.
func WithJSONSchema(name string, schema []byte) Option {
	return func(c *Config) error {
		compiler := jsonschema.NewCompiler()
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
		if err != nil {
			return newError("schema", "unmarshal", err)
		}
		if err := compiler.AddResource(name, doc); err != nil {
			return newError("schema", "add-resource", err)
		}
		compiled, err := compiler.Compile(name)
		if err != nil {
			return newError("schema", "compile", err)
		}
		c.schema = compiled
		return nil
	}
}

// WithTagName overrides the struct tag Bind looks for (default "config").
func WithTagName(tag string) Option {
	return func(c *Config) error {
		c.tagName = tag
		return nil
	}
}

// Load resolves every registered layer and atomically replaces the
// values tree. Layers are merged left-to-right with mergo.WithOverride,
// so later-registered layers win on conflicting keys.
func Load(ctx context.Context, c *Config) error {
	if ctx == nil {
		return ErrNilContext
	}
	merged := make(map[string]any)
	for i, layer := range c.layers {
		if err := ctx.Err(); err != nil {
			return err
		}
		values, err := layer.Load(ctx)
		if err != nil {
			return newError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if values == nil {
			continue
		}
		if err := mergo.Map(&merged, normalizeKeys(values), mergo.WithOverride); err != nil {
			return newError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}

	if c.schema != nil {
		if err := c.schema.Validate(toJSONShape(merged)); err != nil {
			return newError("schema", "validate", err)
		}
	}

	c.mu.Lock()
	c.values = merged
	c.mu.Unlock()
	return nil
}

// toJSONShape converts map[string]any produced by our decoders (which may
// contain non-string-keyed nested maps from some codecs) into the
// map[string]any/[]any/primitive shape jsonschema.Validate expects.
func toJSONShape(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = toJSONShape(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = toJSONShape(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = toJSONShape(val)
		}
		return out
	default:
		return v
	}
}

func (c *Config) snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values
}

// Get returns the raw value at the dotted key, or nil if absent.
func (c *Config) Get(key string) any {
	if c == nil || key == "" {
		return nil
	}
	return lookup(c.snapshot(), strings.ToLower(key))
}

func lookup(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	segments := strings.Split(key, ".")
	var cur any = m
	for _, seg := range segments {
		asMap, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := asMap[seg]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// Bind decodes the merged tree into target (a pointer to struct), then
// applies "default" struct tags to any field left zero-valued.
func (c *Config) Bind(target any) error {
	dec, err := mapstructure.NewDecoder(c.getDecoderConfig(target))
	if err != nil {
		return newError("bind", "new-decoder", err)
	}
	if err := dec.Decode(c.snapshot()); err != nil {
		return newError("bind", "decode", err)
	}
	return applyDefaults(target)
}

func (c *Config) getDecoderConfig(target any) *mapstructure.DecoderConfig {
	c.decoderOnce.Do(func() {
		c.decoderConfig = &mapstructure.DecoderConfig{
			TagName:          c.tagName,
			Squash:           true,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.StringToTimeHookFunc(time.RFC3339),
			),
		}
	})
	cfg := *c.decoderConfig
	cfg.Result = target
	return &cfg
}

// Validator is implemented by a struct Bind targets that can check its
// own invariants after decoding.
type Validator interface {
	Validate() error
}

func applyDefaults(target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return nil
	}
	setDefaults(val.Elem())
	if v, ok := target.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func setDefaults(val reflect.Value) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			setDefaults(field)
			continue
		}
		tag := typ.Field(i).Tag.Get("default")
		if tag == "" || !isZero(field) {
			continue
		}
		setDefaultValue(field, tag)
	}
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func setDefaultValue(field reflect.Value, raw string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if d, err := time.ParseDuration(raw); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := cast.ToInt64E(raw); err == nil {
			field.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := cast.ToUint64E(raw); err == nil {
			field.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := cast.ToFloat64E(raw); err == nil {
			field.SetFloat(f)
		}
	case reflect.Bool:
		if b, err := cast.ToBoolE(raw); err == nil {
			field.SetBool(b)
		}
	}
}
