// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package session

import (
	"context"
	"sync"
	"time"
)

// Session is a request-bound handle over loaded Data. It satisfies the
// narrow SessionHandle interface Context exposes, matching it structurally
// (no import of the router package to avoid a dependency cycle).
type Session struct {
	mu    sync.Mutex
	id    string
	store Store
	data  Data
	dirty bool
}

// Load fetches id's data from store (ErrNotFound yields an empty session
// with a fresh id) and promotes its NextFlash into the readable Flash bag.
func Load(ctx context.Context, store Store, id string) (*Session, error) {
	if id == "" {
		id = NewID()
		return &Session{id: id, store: store, data: Data{Values: map[string]any{}}}, nil
	}
	data, err := store.Load(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return &Session{id: id, store: store, data: Data{Values: map[string]any{}}}, nil
		}
		return nil, err
	}
	if data.Values == nil {
		data.Values = map[string]any{}
	}
	// The flash bag written by the previous response becomes readable now;
	// it must not survive a second load.
	flash := data.NextFlash
	data.NextFlash = nil
	data.Flash = flash
	return &Session{id: id, store: store, data: data}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Get returns a stored value.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.Values[key]
	return v, ok
}

// Set stores a value, marking the session dirty so Save persists it.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Values[key] = value
	s.dirty = true
}

// Remove deletes a stored value.
func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.Values, key)
	s.dirty = true
}

// Flash stages value to be readable for exactly the next request's
// session load, not this one.
func (s *Session) Flash(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.NextFlash == nil {
		s.data.NextFlash = map[string]any{}
	}
	s.data.NextFlash[key] = value
	s.dirty = true
}

// Flashed reads a value staged by the previous request's Flash call. Each
// key is implicitly consumed: after Save, the current Flash bag is not
// carried forward.
func (s *Session) Flashed(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data.Flash[key]
	return v, ok
}

// Dirty reports whether any mutating call has occurred since Load.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Regenerate rotates the session id via the backing store, invalidating
// the old id (defeats session fixation on privilege change). After
// Regenerate, ID() returns the new id.
func (s *Session) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	newID, err := s.store.RegenerateID(context.Background(), s.id)
	if err != nil {
		return err
	}
	s.id = newID
	s.dirty = true
	return nil
}

// Save persists the session if it is dirty or Load consumed a flash bag,
// setting expiry on the stored record. Returns nil without writing when
// nothing changed.
func (s *Session) Save(ctx context.Context, ttl time.Duration) error {
	s.mu.Lock()
	if !s.dirty && len(s.data.Flash) == 0 {
		s.mu.Unlock()
		return nil
	}
	id, data := s.id, s.data
	s.mu.Unlock()
	return s.store.Save(ctx, id, data, time.Now().Add(ttl))
}

// Destroy removes the session from the backing store.
func (s *Session) Destroy(ctx context.Context) error {
	s.mu.Lock()
	id := s.id
	s.mu.Unlock()
	return s.store.Destroy(ctx, id)
}

// Data returns a snapshot of the session's persisted shape, for callers
// (e.g. the cookie-backed strategy) that serialize it directly rather
// than through a Store.
func (s *Session) Data() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}
