package storage

import (
	"context"

	"github.com/pinhole-run/pinhole/message"
)

// Backend persists the Persistent-scope StateMap for a single origin.
// Implementations only ever need to support whole-map load/save: the
// Manager owns merge and mutation semantics in memory and flushes the
// full map back on every change.
type Backend interface {
	// Load returns the persisted StateMap for origin, or an empty map
	// if nothing has been saved yet.
	Load(ctx context.Context, origin string) (message.StateMap, error)

	// Save persists the full StateMap for origin, replacing whatever
	// was there before.
	Save(ctx context.Context, origin string, data message.StateMap) error

	// Close releases any resources held by the backend.
	Close() error
}
