// Package storage implements the client-side StorageManager: the
// three-scope key/value store (persistent, session, local) a Pinhole
// client keeps per origin, with a pluggable persistence backend for
// the Persistent scope.
package storage

import "errors"

var (
	ErrStoreClosed              = errors.New("storage: backend is closed")
	ErrUnsupportedPersistentType = errors.New("storage: value type is not supported for persistent storage")
)
