// Package kv abstracts durable key-value persistence so the favorites list can live in a
// plain file, a SQLite database, or memory.
package kv

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidKey is returned for keys that cannot be stored safely by every backend
var ErrInvalidKey = errors.New("invalid key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store persists whole values under string keys
type Store interface {
	// Read returns the stored value and whether the key exists
	Read(key string) ([]byte, bool, error)
	// Write replaces the value of key
	Write(key string, value []byte) error
	// Clear removes key. Clearing a missing key is not an error.
	Clear(key string) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the backend named by backend. location is a directory for the file
// backend, a database path for sqlite, and ignored for memory.
func Open(backend, location string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(location), nil
	case BackendSQLite:
		return OpenSQLite(location)
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend: %s", backend)
}

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
