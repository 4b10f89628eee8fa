package tlsconfig

import (
	"crypto/tls"
	"fmt"
)

// ServerConfig builds the TLS configuration a listening Pinhole server
// presents to connecting clients: a PEM certificate and a PKCS8 PEM
// private key, loaded once at startup.
type ServerConfig struct {
	CertPath string
	KeyPath  string
}

// DefaultServerConfig returns a ServerConfig with no cert/key set; the
// caller must fill both before calling Build.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{}
}

func (sc *ServerConfig) Validate() error {
	if sc.CertPath == "" || sc.KeyPath == "" {
		return ErrMissingCertOrKey
	}
	return nil
}

// Build loads the certificate and key and returns a *tls.Config ready
// to hand to tls.NewListener. A failure here means the server must
// refuse to start rather than accept connections without TLS.
func (sc *ServerConfig) Build() (*tls.Config, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(sc.CertPath, sc.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("tlsconfig: load server certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
