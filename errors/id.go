// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package errors

import "github.com/google/uuid"

// generateErrorID produces a correlation id for an error response. Callers
// needing a different scheme set RFC9457.ErrorIDGenerator instead.
func generateErrorID() string {
	return "err-" + uuid.NewString()
}
