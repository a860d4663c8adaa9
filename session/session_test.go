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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LoadSaveDestroy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	data := Data{Values: map[string]any{"user": "alice"}}
	require.NoError(t, store.Save(ctx, "id1", data, time.Now().Add(time.Hour)))

	got, err := store.Load(ctx, "id1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Values["user"])

	require.NoError(t, store.Destroy(ctx, "id1"))
	_, err = store.Load(ctx, "id1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_LoadExpired(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "id1", Data{Values: map[string]any{}}, time.Now().Add(-time.Minute)))

	_, err := store.Load(ctx, "id1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_RegenerateIDMovesData(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "old", Data{Values: map[string]any{"k": "v"}}, time.Now().Add(time.Hour)))

	newID, err := store.RegenerateID(ctx, "old")
	require.NoError(t, err)
	assert.NotEqual(t, "old", newID)

	_, err = store.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := store.Load(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, "v", got.Values["k"])
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Save(ctx, "expired", Data{Values: map[string]any{}}, now.Add(-time.Second)))
	require.NoError(t, store.Save(ctx, "alive", Data{Values: map[string]any{}}, now.Add(time.Hour)))

	store.Sweep(now)

	_, err := store.Load(ctx, "alive")
	assert.NoError(t, err)
}

func TestLoad_EmptyIDProducesFreshSession(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess, err := Load(context.Background(), store, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID())
	assert.False(t, sess.Dirty())
}

func TestSession_SetSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := Load(ctx, store, "")
	require.NoError(t, err)
	sess.Set("user", "alice")
	assert.True(t, sess.Dirty())

	require.NoError(t, sess.Save(ctx, time.Hour))

	reloaded, err := Load(ctx, store, sess.ID())
	require.NoError(t, err)
	v, ok := reloaded.Get("user")
	require.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestSession_SaveNoopWhenNotDirty(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	sess, err := Load(ctx, store, "")
	require.NoError(t, err)

	require.NoError(t, sess.Save(ctx, time.Hour))
	_, err = store.Load(ctx, sess.ID())
	assert.ErrorIs(t, err, ErrNotFound, "nothing should have been persisted")
}

func TestSession_FlashVisibleOnlyNextLoad(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := Load(ctx, store, "")
	require.NoError(t, err)
	sess.Flash("notice", "saved")

	_, ok := sess.Flashed("notice")
	assert.False(t, ok, "flash must not be visible during the request that set it")

	require.NoError(t, sess.Save(ctx, time.Hour))

	reloaded, err := Load(ctx, store, sess.ID())
	require.NoError(t, err)
	v, ok := reloaded.Flashed("notice")
	require.True(t, ok)
	assert.Equal(t, "saved", v)

	require.NoError(t, reloaded.Save(ctx, time.Hour))
	thirdLoad, err := Load(ctx, store, reloaded.ID())
	require.NoError(t, err)
	_, ok = thirdLoad.Flashed("notice")
	assert.False(t, ok, "flash must not survive a second load")
}

func TestSession_RegenerateChangesID(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	sess, err := Load(ctx, store, "")
	require.NoError(t, err)
	sess.Set("k", "v")
	require.NoError(t, sess.Save(ctx, time.Hour))

	oldID := sess.ID()
	require.NoError(t, sess.Regenerate())
	assert.NotEqual(t, oldID, sess.ID())

	_, err = store.Load(ctx, oldID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSession_RemoveDeletesKey(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess, err := Load(context.Background(), store, "")
	require.NoError(t, err)
	sess.Set("k", "v")
	sess.Remove("k")

	_, ok := sess.Get("k")
	assert.False(t, ok)
}

func TestCookieCodec_SealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"))
	data := Data{Values: map[string]any{"user": "alice"}}

	sealed, err := codec.Seal(data)
	require.NoError(t, err)

	opened, err := codec.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "alice", opened.Values["user"])
}

func TestCookieCodec_OpenRejectsTamperedValue(t *testing.T) {
	t.Parallel()

	codec := NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"))
	sealed, err := codec.Seal(Data{Values: map[string]any{"user": "alice"}})
	require.NoError(t, err)

	tampered := sealed + "x"
	_, err = codec.Open(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCookieCodec_OpenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	a := NewCookieCodec([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	b := NewCookieCodec([]byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))

	sealed, err := a.Seal(Data{Values: map[string]any{"user": "alice"}})
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCookieCodec_OpenRejectsMalformedValue(t *testing.T) {
	t.Parallel()

	codec := NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"))
	_, err := codec.Open("not-a-valid-cookie")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNewID_Unique(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, NewID(), NewID())
}
