package server

import (
	"fmt"
	"io"
	"sync"

	"github.com/pinhole-run/pinhole/message"
	"github.com/pinhole-run/pinhole/wire"
)

// Context is bound to a single connection's stream and handed to a
// Route's Action method. Each helper method sends exactly one wire
// message and is safe to call repeatedly (Store) or exactly once
// (Redirect) over the course of handling one Action.
type Context struct {
	// Storage is the request's flattened storage snapshot, as the
	// client merged it across its three scopes.
	Storage message.StateMap
	// Capabilities is the set negotiated for this connection at the
	// time the request was dispatched.
	Capabilities message.CapabilitySet

	mu sync.Mutex
	w  io.Writer
}

func newContext(w io.Writer, storage message.StateMap, caps message.CapabilitySet) *Context {
	return &Context{Storage: storage, Capabilities: caps, w: w}
}

// Store sends a Store message instructing the client to mutate scoped
// storage. May be called any number of times while handling an Action.
func (c *Context) Store(scope message.StorageScope, key string, value message.StateValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wire.EncodeFrame(c.w, message.NewStore(scope, key, value))
}

// Redirect sends a RedirectTo message to the client.
func (c *Context) Redirect(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wire.EncodeFrame(c.w, message.NewRedirectTo(path))
}

// AssertCapability succeeds iff uri was negotiated for this
// connection. On failure it sends Error{UpgradeRequired, ...} itself
// and returns an error that, once propagated out of Route.Action,
// causes the dispatch loop to terminate the connection rather than
// send a second error message.
func (c *Context) AssertCapability(uri message.Capability) error {
	if c.Capabilities.Contains(uri) {
		return nil
	}

	c.mu.Lock()
	err := wire.EncodeFrame(c.w, message.NewError(message.UpgradeRequired, fmt.Sprintf("Missing required capability: %s", uri)))
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return &missingCapabilityError{capability: uri}
}

// missingCapabilityError marks an Action error as already having sent
// its own terminal Error message, so the dispatch loop must not send
// another one on top of it.
type missingCapabilityError struct {
	capability message.Capability
}

func (e *missingCapabilityError) Error() string {
	return fmt.Sprintf("server: missing required capability: %s", e.capability)
}
