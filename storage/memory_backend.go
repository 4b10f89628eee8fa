package storage

import (
	"context"
	"sync"

	"github.com/pinhole-run/pinhole/message"
)

// MemoryBackend is a process-local Backend with no durability,
// suitable for tests and for origins that opt out of persistence.
type MemoryBackend struct {
	mu     sync.RWMutex
	data   map[string]message.StateMap
	closed bool
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]message.StateMap)}
}

func (m *MemoryBackend) Load(ctx context.Context, origin string) (message.StateMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	existing, ok := m.data[origin]
	if !ok {
		return message.StateMap{}, nil
	}
	out := make(message.StateMap, len(existing))
	for k, v := range existing {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryBackend) Save(ctx context.Context, origin string, data message.StateMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}

	stored := make(message.StateMap, len(data))
	for k, v := range data {
		stored[k] = v
	}
	m.data[origin] = stored
	return nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	m.closed = true
	m.data = nil
	return nil
}
