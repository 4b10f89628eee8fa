// Package client implements the Pinhole client-side session engine:
// connect-with-retry, TLS handshake, reconnection, the command/event
// queues a UI drives and observes, and the scoped storage lifecycle
// across reconnects, per spec.md §4.5.
package client

import "errors"

var (
	// ErrSessionClosed is returned by Load/Action once the session
	// task has ended (either the command queue was closed by Close, or
	// the session terminated fatally).
	ErrSessionClosed = errors.New("client: session is closed")

	// ErrUpgradeRequired marks a session that ended because the server
	// reported a capability mismatch it cannot resolve; the session
	// does not reconnect after this.
	ErrUpgradeRequired = errors.New("client: server requires a capability upgrade")

	// ErrNoSubscribers is returned internally when an event has no
	// listener to deliver to; per spec.md §4.5 this is fatal to the
	// session (the UI is presumed gone).
	ErrNoSubscribers = errors.New("client: no event subscribers")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("client: invalid configuration")
)

// fatalError wraps an error that must end the session task entirely,
// as opposed to one that merely ends the current connection and
// triggers a reconnect.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }
