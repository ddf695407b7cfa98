package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"time"

	"software.sslmate.com/src/go-pkcs12"

	"icelink/logging"
)

// TLSConfig carries the subset of IceSSL.* properties needed to build
// a *tls.Config: trust anchors, an optional client
// certificate (PEM pair or PKCS#12 bundle), peer verification, and a
// protocol version floor/ceiling.
type TLSConfig struct {
	// CAFile is a PEM bundle of trusted CA certificates (IceSSL.CAs /
	// IceSSL.CertAuthFile). Empty means use the system trust store.
	CAFile string

	// CertFile is either a PEM certificate (paired with KeyFile) or a
	// PKCS#12 bundle (when Password is set) (IceSSL.CertFile).
	CertFile string
	// KeyFile is the PEM private key paired with CertFile
	// (IceSSL.KeyFile); unused for PKCS#12 bundles.
	KeyFile string
	// Password decrypts a PKCS#12 CertFile (IceSSL.Password).
	Password string

	// VerifyPeer mirrors IceSSL.VerifyPeer: 0 disables peer
	// verification, non-zero requires and verifies the server chain.
	VerifyPeer int

	// MinVersion/MaxVersion name a protocol floor/ceiling
	// (IceSSL.ProtocolVersionMin/Max): "SSL3", "TLS1.0", "TLS1.1",
	// "TLS1.2", "TLS1.3". Empty leaves the stdlib default in place.
	MinVersion string
	MaxVersion string
}

// tlsVersions maps the property string names to crypto/tls constants.
var tlsVersions = map[string]uint16{
	"SSL3":   tls.VersionSSL30,
	"TLS1.0": tls.VersionTLS10,
	"TLS1.1": tls.VersionTLS11,
	"TLS1.2": tls.VersionTLS12,
	"TLS1.3": tls.VersionTLS13,
}

// Build turns a TLSConfig into a *tls.Config, loading the configured CA
// bundle and client certificate (if any).
func (c TLSConfig) Build() (*tls.Config, error) {
	cfg := &tls.Config{}

	if c.VerifyPeer == 0 {
		cfg.InsecureSkipVerify = true
	}

	if c.CAFile != "" {
		pemBytes, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("transport: read IceSSL.CAs %s: %w", c.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pemBytes) {
			return nil, fmt.Errorf("transport: no certificates found in %s", c.CAFile)
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" {
		cert, err := loadClientCertificate(c.CertFile, c.KeyFile, c.Password)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if v, ok := tlsVersions[c.MinVersion]; ok {
		cfg.MinVersion = v
	}
	if v, ok := tlsVersions[c.MaxVersion]; ok {
		cfg.MaxVersion = v
	}

	return cfg, nil
}

// loadClientCertificate loads a PEM cert/key pair, or (when password is
// non-empty) a PKCS#12 bundle via software.sslmate.com/src/go-pkcs12.
func loadClientCertificate(certFile, keyFile, password string) (tls.Certificate, error) {
	if password == "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("transport: load IceSSL.CertFile/KeyFile: %w", err)
		}
		return cert, nil
	}

	data, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("transport: read IceSSL.CertFile %s: %w", certFile, err)
	}
	key, leaf, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("transport: decode PKCS#12 bundle %s: %w", certFile, err)
	}
	chain := [][]byte{leaf.Raw}
	for _, ca := range caCerts {
		chain = append(chain, ca.Raw)
	}
	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        leaf,
	}, nil
}

// tlsTransport wraps a *tls.Conn.
type tlsTransport struct {
	conn *tls.Conn
}

func (t *tlsTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *tlsTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *tlsTransport) Close() error                { return t.conn.Close() }
func (t *tlsTransport) Tag() string                 { return "ssl" }
func (t *tlsTransport) SetDeadline(d time.Time) error {
	return t.conn.SetDeadline(d)
}

// TLSDialer dials TCP then layers a TLS handshake on top, mirroring
// TCPDialer plus the IceSSL.* configuration in TLSConfig.
type TLSDialer struct {
	ConnectTimeout time.Duration
	Config         TLSConfig
}

// Dial opens a TLS connection to host:port.
func (d TLSDialer) Dial(ctx context.Context, host string, port int) (Transport, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	logging.DebugConnect(logging.SubsystemTransport, addr)

	tlsCfg, err := d.Config.Build()
	if err != nil {
		logging.DebugConnectError(logging.SubsystemTransport, addr, err)
		return nil, err
	}

	dialer := net.Dialer{Timeout: d.ConnectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		logging.DebugConnectError(logging.SubsystemTransport, addr, err)
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	conn := tls.Client(rawConn, tlsCfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		conn.Close()
		logging.DebugConnectError(logging.SubsystemTransport, addr, err)
		return nil, fmt.Errorf("transport: tls handshake with %s: %w", addr, err)
	}

	logging.DebugConnectSuccess(logging.SubsystemTransport, addr, tlsVersionName(conn.ConnectionState().Version))
	return &tlsTransport{conn: conn}, nil
}

func tlsVersionName(v uint16) string {
	for name, ver := range tlsVersions {
		if ver == v {
			return name
		}
	}
	return fmt.Sprintf("0x%04x", v)
}
