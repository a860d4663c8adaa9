// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

//go:build windows

package shutdown

import "os"

// defaultShutdownSignals returns os.Interrupt only; SIGTERM has no
// equivalent on Windows.
func defaultShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
