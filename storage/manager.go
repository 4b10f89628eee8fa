package storage

import (
	"context"
	"sync"

	"github.com/pinhole-run/pinhole/message"
)

// Manager is the client-side, per-origin store of the three state
// scopes the protocol defines. Persistent survives across restarts via
// the configured Backend; Session survives across navigation within a
// connection; Local is cleared every time the client navigates to a
// new route.
type Manager struct {
	mu      sync.RWMutex
	backend Backend
	origin  string

	persistent  message.StateMap
	session     message.StateMap
	local       message.StateMap
	currentPath string
}

// NewManager creates a Manager for origin, loading whatever Persistent
// data the backend already has.
func NewManager(ctx context.Context, backend Backend, origin string) (*Manager, error) {
	persistent, err := backend.Load(ctx, origin)
	if err != nil {
		return nil, err
	}
	if persistent == nil {
		persistent = message.StateMap{}
	}

	return &Manager{
		backend:    backend,
		origin:     origin,
		persistent: persistent,
		session:    message.StateMap{},
		local:      message.StateMap{},
	}, nil
}

// isPersistable reports whether v is one of the value kinds a
// Persistent-scope entry may hold: Null, Boolean, or String.
func isPersistable(v message.StateValue) bool {
	if v.IsNull() {
		return true
	}
	if _, ok := v.BooleanValue(); ok {
		return true
	}
	if _, ok := v.StringValue(); ok {
		return true
	}
	return false
}

// Store writes value under key in the given scope. Writing an
// unsupported value kind to Persistent scope fails rather than
// silently degrading the value; that restriction does not apply to
// Session or Local scope.
func (m *Manager) Store(ctx context.Context, scope message.StorageScope, key string, value message.StateValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch scope {
	case message.Persistent:
		if !isPersistable(value) {
			return ErrUnsupportedPersistentType
		}
		m.persistent[key] = value
		return m.backend.Save(ctx, m.origin, m.persistent)
	case message.Session:
		m.session[key] = value
		return nil
	case message.Local:
		m.local[key] = value
		return nil
	default:
		return ErrUnsupportedPersistentType
	}
}

// Get looks up key across scopes, preferring Local over Session over
// Persistent, matching the merge order GetAllStorage uses.
func (m *Manager) Get(key string) (message.StateValue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.local[key]; ok {
		return v, true
	}
	if v, ok := m.session[key]; ok {
		return v, true
	}
	if v, ok := m.persistent[key]; ok {
		return v, true
	}
	return message.StateValue{}, false
}

// NavigateTo records the client's new current route. Local scope is
// cleared only when the route actually changes, since Local state only
// makes sense for the route that set it; navigating to the same route
// again leaves it untouched.
func (m *Manager) NavigateTo(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if path == m.currentPath {
		return
	}
	m.currentPath = path
	m.local = message.StateMap{}
}

// CurrentPath returns the route last passed to NavigateTo.
func (m *Manager) CurrentPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentPath
}

// GetAllStorage returns the merged view across all three scopes, with
// Local overriding Session overriding Persistent.
func (m *Manager) GetAllStorage() message.StateMap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	merged := make(message.StateMap, len(m.persistent)+len(m.session)+len(m.local))
	for k, v := range m.persistent {
		merged[k] = v
	}
	for k, v := range m.session {
		merged[k] = v
	}
	for k, v := range m.local {
		merged[k] = v
	}
	return merged
}

// ClearLocalStorage discards all Local-scope entries.
func (m *Manager) ClearLocalStorage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.local = message.StateMap{}
}

// ClearSessionStorage discards all Session-scope entries.
func (m *Manager) ClearSessionStorage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = message.StateMap{}
}

// ClearAllStorage discards every scope, including Persistent, which is
// flushed back to the backend as an empty map.
func (m *Manager) ClearAllStorage(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.local = message.StateMap{}
	m.session = message.StateMap{}
	m.persistent = message.StateMap{}
	return m.backend.Save(ctx, m.origin, m.persistent)
}

// Close releases the underlying backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
