package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"

	"github.com/pinhole-run/pinhole/message"
)

var originPrefix = []byte("origin:")

// PebbleBackend is an embedded-LSM alternative to FileBackend for
// deployments that want a single persistence engine shared across many
// origins without per-origin files.
type PebbleBackend struct {
	db     *pebble.DB
	mu     sync.RWMutex
	closed bool
}

// PebbleBackendConfig configures a PebbleBackend.
type PebbleBackendConfig struct {
	Path string
	Opts *pebble.Options
}

// NewPebbleBackend opens (or creates) a Pebble database at config.Path.
func NewPebbleBackend(config PebbleBackendConfig) (*PebbleBackend, error) {
	opts := config.Opts
	if opts == nil {
		opts = &pebble.Options{ErrorIfExists: false}
	}
	db, err := pebble.Open(config.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open pebble db: %w", err)
	}
	return &PebbleBackend{db: db}, nil
}

func makeOriginKey(origin string) []byte {
	key := make([]byte, len(originPrefix)+len(origin))
	copy(key, originPrefix)
	copy(key[len(originPrefix):], origin)
	return key
}

func (p *PebbleBackend) Load(ctx context.Context, origin string) (message.StateMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrStoreClosed
	}

	value, closer, err := p.db.Get(makeOriginKey(origin))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return message.StateMap{}, nil
		}
		return nil, fmt.Errorf("storage: pebble get: %w", err)
	}
	defer closer.Close()

	var data message.StateMap
	if err := cbor.Unmarshal(value, &data); err != nil {
		return nil, fmt.Errorf("storage: decode %q: %w", origin, err)
	}
	return data, nil
}

func (p *PebbleBackend) Save(ctx context.Context, origin string, data message.StateMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrStoreClosed
	}

	value, err := cbor.Marshal(data)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", origin, err)
	}
	return p.db.Set(makeOriginKey(origin), value, pebble.Sync)
}

func (p *PebbleBackend) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrStoreClosed
	}
	p.closed = true
	return p.db.Close()
}
