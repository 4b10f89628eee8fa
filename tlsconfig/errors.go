// Package tlsconfig builds crypto/tls configurations for Pinhole
// servers and clients from the PEM certificate/key material and trust
// modes the protocol requires.
package tlsconfig

import "errors"

var (
	ErrMissingCertOrKey  = errors.New("tlsconfig: cert and key paths are both required")
	ErrMissingCACertPath = errors.New("tlsconfig: CA cert path required for custom-CA trust mode")
	ErrAmbiguousHostname = errors.New("tlsconfig: origin has no explicit host; dev-unsafe trust mode required")
)
