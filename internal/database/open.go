// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package database

import (
	"errors"
	"fmt"
)

// Backend is the name of a database engine.
type Backend string

const (
	// Pebble is the default backend.
	Pebble Backend = "pebble"
	// Badger is the badger v3 backend.
	Badger Backend = "badger"
)

// ErrBackendUnknown is returned when opening an unknown backend.
var ErrBackendUnknown = errors.New("database backend is unknown")

// Open opens the database for the backend given.
func Open(backend Backend, path string, inMemory bool) (Database, error) {
	switch backend {
	case Pebble, "":
		if inMemory && path == "" {
			path = "memory"
		}
		return NewPebble(path, inMemory)
	case Badger:
		return NewBadger(path, inMemory)
	default:
		return nil, fmt.Errorf("%w: %s", ErrBackendUnknown, backend)
	}
}
