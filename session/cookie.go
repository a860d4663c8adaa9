// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package session

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/gob"
	"errors"
	"fmt"
)

// ErrInvalidSignature is returned by CookieCodec.Open when the cookie's
// HMAC does not verify, indicating tampering or a rotated secret.
var ErrInvalidSignature = errors.New("session: invalid cookie signature")

// CookieCodec seals Data into a self-contained, HMAC-signed cookie value
// for the cookie-backed session strategy, where no server-side Store is
// consulted.
type CookieCodec struct {
	secret []byte
}

// NewCookieCodec constructs a codec signing with secret. secret should be
// at least 32 bytes of high-entropy key material.
func NewCookieCodec(secret []byte) *CookieCodec {
	return &CookieCodec{secret: secret}
}

func init() {
	gob.Register(map[string]any{})
}

// Seal encodes data and appends an HMAC-SHA256 tag, returning a value
// safe to place directly in a Set-Cookie header.
func (c *CookieCodec) Seal(data Data) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return "", fmt.Errorf("session: encode cookie data: %w", err)
	}
	payload := buf.Bytes()
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	sig := mac.Sum(nil)

	sealed := base64.URLEncoding.EncodeToString(payload) + "." + base64.URLEncoding.EncodeToString(sig)
	return sealed, nil
}

// Open verifies and decodes a value produced by Seal.
func (c *CookieCodec) Open(value string) (Data, error) {
	idx := lastDot(value)
	if idx < 0 {
		return Data{}, ErrInvalidSignature
	}
	payloadB64, sigB64 := value[:idx], value[idx+1:]

	payload, err := base64.URLEncoding.DecodeString(payloadB64)
	if err != nil {
		return Data{}, ErrInvalidSignature
	}
	sig, err := base64.URLEncoding.DecodeString(sigB64)
	if err != nil {
		return Data{}, ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	expected := mac.Sum(nil)
	if !hmac.Equal(sig, expected) {
		return Data{}, ErrInvalidSignature
	}

	var data Data
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&data); err != nil {
		return Data{}, fmt.Errorf("session: decode cookie data: %w", err)
	}
	return data, nil
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
