// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package session

import "github.com/google/uuid"

// NewID generates a new session identifier.
func NewID() string {
	return uuid.NewString()
}
