// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by TokenValidator implementations when a
// bearer token fails signature or claims verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenValidator extracts a Principal from a raw bearer token.
type TokenValidator interface {
	Validate(token string) (*Principal, error)
}

// JWTValidator validates HMAC-signed JWTs, the strategy aras-auth's
// TokenService implements against its own signing key.
type JWTValidator struct {
	secret           []byte
	permissionsClaim string
}

// NewJWTValidator constructs a validator using secret for HMAC
// verification. permissionsClaim names the claim (default "permissions")
// holding a []string of "resource:action" entries.
func NewJWTValidator(secret []byte, permissionsClaim string) *JWTValidator {
	if permissionsClaim == "" {
		permissionsClaim = "permissions"
	}
	return &JWTValidator{secret: secret, permissionsClaim: permissionsClaim}
}

func (v *JWTValidator) Validate(token string) (*Principal, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Method)
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, _ := claims.GetSubject()
	principal := &Principal{Subject: subject, Claims: claims}

	if raw, ok := claims[v.permissionsClaim]; ok {
		if list, ok := raw.([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					principal.Permissions = append(principal.Permissions, s)
				}
			}
		}
	}
	return principal, nil
}
