package client

import (
	"github.com/pinhole-run/pinhole/storage"
	"github.com/pinhole-run/pinhole/tlsconfig"
)

// Config describes how a NetworkSession connects to one origin and
// where its persistent storage scope lives.
type Config struct {
	// Address is the origin, e.g. "app.example.com:4433".
	Address string
	// TLS selects trust mode; Origin is filled in from Address
	// automatically by Validate if left empty.
	TLS tlsconfig.ClientConfig
	// StorageBackend persists the Persistent scope. If nil, New uses
	// a storage.FileBackend rooted at storage.DefaultDataDir().
	StorageBackend storage.Backend
}

// DefaultConfig returns a strict-trust Config for address.
func DefaultConfig(address string) *Config {
	return &Config{
		Address: address,
		TLS:     tlsconfig.ClientConfig{Mode: tlsconfig.Strict, Origin: address},
	}
}

// Validate reports whether cfg has enough to build a session.
func (cfg *Config) Validate() error {
	if cfg.Address == "" {
		return ErrInvalidConfig
	}
	if cfg.TLS.Origin == "" {
		cfg.TLS.Origin = cfg.Address
	}
	return cfg.TLS.Validate()
}
