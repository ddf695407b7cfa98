package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"icelink/logging"
)

// tcpTransport wraps a plain net.Conn.
type tcpTransport struct {
	conn net.Conn
}

func (t *tcpTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *tcpTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *tcpTransport) Close() error                { return t.conn.Close() }
func (t *tcpTransport) Tag() string                 { return "tcp" }
func (t *tcpTransport) SetDeadline(d time.Time) error {
	return t.conn.SetDeadline(d)
}

// TCPDialer dials plain TCP connections with keepalive enabled.
type TCPDialer struct {
	// ConnectTimeout bounds the initial dial; zero means no timeout.
	ConnectTimeout time.Duration
}

// Dial opens a TCP connection to host:port.
func (d TCPDialer) Dial(ctx context.Context, host string, port int) (Transport, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	logging.DebugConnect("transport", addr)

	dialer := net.Dialer{Timeout: d.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		logging.DebugConnectError("transport", addr, err)
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}
	logging.DebugConnectSuccess("transport", addr, "tcp")
	return &tcpTransport{conn: conn}, nil
}
