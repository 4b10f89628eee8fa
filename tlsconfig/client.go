package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
)

// TrustMode selects how a client validates the server's certificate.
type TrustMode int

const (
	// Strict validates against the system root CA pool.
	Strict TrustMode = iota
	// CustomCA validates against a single CA certificate file, for
	// self-signed deployments and private networks.
	CustomCA
	// DevUnsafe skips certificate verification entirely. Never select
	// this mode for a production origin.
	DevUnsafe
)

// ClientConfig builds the TLS configuration a Pinhole client uses when
// dialing a server.
type ClientConfig struct {
	Mode       TrustMode
	CACertPath string // required when Mode == CustomCA
	// Origin is the address the client was asked to connect to, e.g.
	// "example.com:4433" or "example.com". Its host portion becomes the
	// SNI server name and, in Strict/CustomCA mode, the name verified
	// against the certificate.
	Origin string
}

// DefaultClientConfig returns a strict-trust ClientConfig for origin.
func DefaultClientConfig(origin string) *ClientConfig {
	return &ClientConfig{Mode: Strict, Origin: origin}
}

func (cc *ClientConfig) Validate() error {
	if cc.Mode == CustomCA && cc.CACertPath == "" {
		return ErrMissingCACertPath
	}
	if _, err := cc.hostname(); err != nil {
		return err
	}
	return nil
}

// hostname derives the SNI/verification hostname by splitting Origin on
// ':' and taking the prefix. An origin with no colon has no explicit
// host component and is only acceptable in DevUnsafe mode.
func (cc *ClientConfig) hostname() (string, error) {
	if idx := strings.IndexByte(cc.Origin, ':'); idx >= 0 {
		return cc.Origin[:idx], nil
	}
	if cc.Mode == DevUnsafe {
		return cc.Origin, nil
	}
	return "", ErrAmbiguousHostname
}

// Build returns a *tls.Config matching the configured trust mode.
func (cc *ClientConfig) Build() (*tls.Config, error) {
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	hostname, err := cc.hostname()
	if err != nil {
		return nil, err
	}

	switch cc.Mode {
	case Strict:
		return &tls.Config{ServerName: hostname}, nil
	case CustomCA:
		caCert, err := os.ReadFile(cc.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("tlsconfig: read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("tlsconfig: parse CA certificate: no valid PEM blocks")
		}
		return &tls.Config{ServerName: hostname, RootCAs: pool}, nil
	case DevUnsafe:
		return &tls.Config{ServerName: hostname, InsecureSkipVerify: true}, nil
	default:
		return nil, fmt.Errorf("tlsconfig: unknown trust mode %d", cc.Mode)
	}
}
