package transport

import (
	"crypto/tls"
	"fmt"
	"net"

	"icelink/logging"
)

// Listener accepts inbound Transports for the server side of the
// protocol: the dual of Dialer.
type Listener interface {
	// Accept blocks until the next inbound connection arrives.
	Accept() (Transport, error)
	Close() error
	// Addr reports the bound address, useful when listening on port 0.
	Addr() string
}

type tcpListener struct {
	ln net.Listener
}

// ListenTCP binds a plain TCP listener on addr ("host:port"; port 0
// picks a free port).
func ListenTCP(addr string) (Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	logging.DebugLog(logging.SubsystemTransport, "LISTEN tcp on %s", ln.Addr())
	return &tcpListener{ln: ln}, nil
}

func (l *tcpListener) Accept() (Transport, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetKeepAlive(true)
	}
	return &tcpTransport{conn: conn}, nil
}

func (l *tcpListener) Close() error { return l.ln.Close() }
func (l *tcpListener) Addr() string { return l.ln.Addr().String() }

type tlsListener struct {
	ln net.Listener
}

// ListenTLS binds a TLS listener on addr. The TLSConfig must carry a
// certificate (CertFile/KeyFile or a PKCS#12 bundle); clients are
// verified only when VerifyPeer asks for it.
func ListenTLS(addr string, config TLSConfig) (Listener, error) {
	tlsCfg, err := config.Build()
	if err != nil {
		return nil, err
	}
	if len(tlsCfg.Certificates) == 0 {
		return nil, fmt.Errorf("transport: listen %s: no server certificate configured", addr)
	}
	if config.VerifyPeer > 0 {
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
		tlsCfg.ClientCAs = tlsCfg.RootCAs
	}
	ln, err := tls.Listen("tcp", addr, tlsCfg)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	logging.DebugLog(logging.SubsystemTransport, "LISTEN ssl on %s", ln.Addr())
	return &tlsListener{ln: ln}, nil
}

func (l *tlsListener) Accept() (Transport, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("transport: accept: unexpected connection type %T", conn)
	}
	return &tlsTransport{conn: tlsConn}, nil
}

func (l *tlsListener) Close() error { return l.ln.Close() }
func (l *tlsListener) Addr() string { return l.ln.Addr().String() }
