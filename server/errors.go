// Package server implements the Pinhole server-side session engine:
// route registration and matching, per-connection dispatch, capability
// negotiation, and error translation, per spec.md §4.4.
package server

import "errors"

var (
	// ErrRouteNotFound names a failed route lookup. The dispatch loop
	// does not return it: a missing route is reported to the client as
	// a NotFound Error message and the connection stays open.
	ErrRouteNotFound = errors.New("server: route not found")

	// ErrClientHelloRequired is returned (and closes the connection)
	// when a client sends Load or Action before ClientHello.
	ErrClientHelloRequired = errors.New("server: ClientHello required before any other message")

	// ErrInvalidConfig is returned by Config.Validate when required
	// fields are missing.
	ErrInvalidConfig = errors.New("server: invalid configuration")
)
