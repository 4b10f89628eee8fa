package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinhole-run/pinhole/message"
)

func TestSanitizeOrigin(t *testing.T) {
	assert.Equal(t, "https___example.com_4433", sanitizeOrigin("https://example.com:4433"))
	assert.Equal(t, "plain-host.dev", sanitizeOrigin("plain-host.dev"))
}

func TestFileBackendDistinctOriginsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	// Two origins that sanitize to the same prefix must still land in
	// distinct files because of the sha256 suffix.
	originA := "https://example.com"
	originB := "https:__example.com"

	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, originA, message.StateMap{"k": message.String("a")}))
	require.NoError(t, backend.Save(ctx, originB, message.StateMap{"k": message.String("b")}))

	loadedA, err := backend.Load(ctx, originA)
	require.NoError(t, err)
	loadedB, err := backend.Load(ctx, originB)
	require.NoError(t, err)

	assert.True(t, loadedA["k"].Equal(message.String("a")))
	assert.True(t, loadedB["k"].Equal(message.String("b")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileBackendSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, "https://example.com", message.StateMap{"k": message.String("v")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "no leftover temp file after a successful save")
	}

	path := backend.filePath("https://example.com")
	assert.Equal(t, filepath.Join(dir, filepath.Base(path)), path)
}

func TestFileBackendSaveRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	err = backend.Save(context.Background(), "https://example.com", message.StateMap{
		"count": message.Number(1),
	})
	assert.ErrorIs(t, err, ErrUnsupportedPersistentType)
}

func TestFileBackendLoadSkipsUnsupportedOnDiskValues(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	// Simulate a file written by a hypothetical future client version
	// that persisted a number; current clients must not choke on it.
	path := backend.filePath("https://example.com")
	require.NoError(t, os.WriteFile(path, []byte(`{"ok":"yes","bad":1.5}`), 0o600))

	loaded, err := backend.Load(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded["ok"].Equal(message.String("yes")))
}
