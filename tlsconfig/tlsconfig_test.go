package tlsconfig

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestCertificate(t *testing.T) (certPEM, keyPEM []byte) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:     time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	require.NoError(t, err)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8})
	return certPEM, keyPEM
}

func writeTestPair(t *testing.T) (certPath, keyPath string) {
	t.Helper()
	certPEM, keyPEM := generateTestCertificate(t)
	dir := t.TempDir()
	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0o600))
	return certPath, keyPath
}

func TestServerConfigValidate(t *testing.T) {
	sc := DefaultServerConfig()
	assert.ErrorIs(t, sc.Validate(), ErrMissingCertOrKey)

	sc.CertPath, sc.KeyPath = "a", "b"
	assert.NoError(t, sc.Validate())
}

func TestServerConfigBuild(t *testing.T) {
	certPath, keyPath := writeTestPair(t)
	sc := &ServerConfig{CertPath: certPath, KeyPath: keyPath}

	tlsCfg, err := sc.Build()
	require.NoError(t, err)
	require.Len(t, tlsCfg.Certificates, 1)
}

func TestServerConfigBuildMissingFiles(t *testing.T) {
	sc := &ServerConfig{CertPath: "/does/not/exist.pem", KeyPath: "/does/not/exist-key.pem"}
	_, err := sc.Build()
	assert.Error(t, err)
}

func TestClientConfigHostnameFromOrigin(t *testing.T) {
	cc := DefaultClientConfig("example.com:4433")
	host, err := cc.hostname()
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
}

func TestClientConfigHostnameWithoutPortRequiresDevUnsafe(t *testing.T) {
	cc := &ClientConfig{Mode: Strict, Origin: "example.com"}
	_, err := cc.hostname()
	assert.ErrorIs(t, err, ErrAmbiguousHostname)

	cc.Mode = DevUnsafe
	host, err := cc.hostname()
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
}

func TestClientConfigBuildStrict(t *testing.T) {
	cc := DefaultClientConfig("example.com:4433")
	tlsCfg, err := cc.Build()
	require.NoError(t, err)
	assert.Equal(t, "example.com", tlsCfg.ServerName)
	assert.False(t, tlsCfg.InsecureSkipVerify)
	assert.Nil(t, tlsCfg.RootCAs)
}

func TestClientConfigBuildDevUnsafe(t *testing.T) {
	cc := &ClientConfig{Mode: DevUnsafe, Origin: "example.com:4433"}
	tlsCfg, err := cc.Build()
	require.NoError(t, err)
	assert.True(t, tlsCfg.InsecureSkipVerify)
}

func TestClientConfigBuildCustomCA(t *testing.T) {
	certPath, _ := writeTestPair(t)
	cc := &ClientConfig{Mode: CustomCA, CACertPath: certPath, Origin: "example.com:4433"}
	tlsCfg, err := cc.Build()
	require.NoError(t, err)
	assert.NotNil(t, tlsCfg.RootCAs)
}

func TestClientConfigValidateCustomCARequiresPath(t *testing.T) {
	cc := &ClientConfig{Mode: CustomCA, Origin: "example.com:4433"}
	assert.ErrorIs(t, cc.Validate(), ErrMissingCACertPath)
}
