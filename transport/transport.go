// Package transport provides the duplex byte-stream abstraction the
// connection engine dials: one implementation over plain TCP, one over
// TLS, each tagged so a proxy can report which one it is using.
package transport

import (
	"context"
	"io"
	"time"
)

// Transport is a duplex, independently-closeable byte stream. The
// connection engine treats it as a read half (owned by the reader
// task) and a write half (owned by application goroutines); net.Conn
// already safely supports concurrent Read/Write from separate
// goroutines, so no extra locking is layered on top here.
type Transport interface {
	io.ReadWriteCloser
	// Tag distinguishes "tcp" from "ssl" for logging and for the proxy
	// string's endpoint protocol.
	Tag() string
	// SetDeadline arranges for pending and future I/O to fail with a
	// timeout after t.
	SetDeadline(t time.Time) error
}

// Dialer opens a Transport to (host, port).
type Dialer interface {
	Dial(ctx context.Context, host string, port int) (Transport, error)
}
