package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pinhole-run/pinhole/message"
)

// DataDirEnvVar overrides the default persistent-storage directory,
// mirroring the override-then-platform-default pattern used for other
// per-user application state directories.
const DataDirEnvVar = "PINHOLE_DATA_DIR"

// DefaultDataDir resolves the directory persistent storage files live
// in: the value of DataDirEnvVar if set, otherwise a "pinhole"
// subdirectory of the platform's per-user config directory.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("storage: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "pinhole"), nil
}

// FileBackend persists each origin's Persistent scope as its own JSON
// file. Writes are atomic (temp file + rename). Only Null, Boolean,
// and String values are representable on disk; Save rejects anything
// else, while Load silently drops entries it can't interpret, since
// those may have been written by a newer client version.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

// NewFileBackend creates a FileBackend rooted at dir, creating it if
// necessary.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// sanitizeOrigin replaces every character outside [A-Za-z0-9.-] with
// '_'. The sha256 suffix added by filePath makes the result
// collision-safe even though sanitization alone is not injective.
func sanitizeOrigin(origin string) string {
	var b strings.Builder
	b.Grow(len(origin))
	for _, r := range origin {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (f *FileBackend) filePath(origin string) string {
	sum := sha256.Sum256([]byte(origin))
	name := fmt.Sprintf("%s-%s.json", sanitizeOrigin(origin), hex.EncodeToString(sum[:]))
	return filepath.Join(f.dir, name)
}

func (f *FileBackend) Load(ctx context.Context, origin string) (message.StateMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.filePath(origin))
	if err != nil {
		if os.IsNotExist(err) {
			return message.StateMap{}, nil
		}
		return nil, fmt.Errorf("storage: read %q: %w", origin, err)
	}

	var onDisk map[string]any
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		return nil, fmt.Errorf("storage: parse %q: %w", origin, err)
	}

	result := make(message.StateMap, len(onDisk))
	for key, v := range onDisk {
		switch val := v.(type) {
		case nil:
			result[key] = message.Null()
		case bool:
			result[key] = message.Boolean(val)
		case string:
			result[key] = message.String(val)
		default:
			// Unsupported on-disk shape (e.g. a future client wrote a
			// number or object here): skip rather than fail the load.
		}
	}
	return result, nil
}

func (f *FileBackend) Save(ctx context.Context, origin string, data message.StateMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	onDisk := make(map[string]any, len(data))
	for key, v := range data {
		switch {
		case v.IsNull():
			onDisk[key] = nil
		case v.IsEmpty():
			continue
		default:
			scalar, ok := asScalar(v)
			if !ok {
				return fmt.Errorf("storage: key %q: %w", key, ErrUnsupportedPersistentType)
			}
			onDisk[key] = scalar
		}
	}

	raw, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", origin, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.filePath(origin)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write %q: %w", origin, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("storage: rename into place: %w", err)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

// asScalar reports the plain Go value behind a Boolean or String
// StateValue, the only non-null variants a FileBackend can persist.
func asScalar(v message.StateValue) (any, bool) {
	if b, ok := v.BooleanValue(); ok {
		return b, true
	}
	if s, ok := v.StringValue(); ok {
		return s, true
	}
	return nil, false
}
