package proxy

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"icelink/ice"
	"icelink/transport"
)

// pipeTransport adapts a net.Conn (one half of a net.Pipe()) to the
// transport.Transport interface so protocol tests can run against a
// scripted peer without real sockets.
type pipeTransport struct {
	net.Conn
}

func (p pipeTransport) Tag() string { return "pipe" }

// fakeDialer hands back a pre-established net.Pipe() half instead of
// actually dialing, so the reader task and dispatch path can be driven
// against a scripted fake server with no real sockets.
type fakeDialer struct {
	conn net.Conn
}

func (d fakeDialer) Dial(ctx context.Context, host string, port int) (transport.Transport, error) {
	return pipeTransport{d.conn}, nil
}

func writeFrame(t *testing.T, conn net.Conn, msgType byte, body []byte) {
	t.Helper()
	header := ice.EncodeHeader(nil, ice.NewHeader(msgType, ice.HeaderSize+len(body)))
	_, err := conn.Write(append(header, body...))
	require.NoError(t, err)
}

func readRequest(t *testing.T, conn net.Conn) ice.RequestData {
	t.Helper()
	headerBuf := make([]byte, ice.HeaderSize)
	_, err := readFullN(conn, headerBuf)
	require.NoError(t, err)
	pos := 0
	header, err := ice.DecodeHeader(headerBuf, &pos)
	require.NoError(t, err)
	require.Equal(t, ice.MsgRequest, header.MessageType)

	body := make([]byte, int(header.MessageSize)-ice.HeaderSize)
	_, err = readFullN(conn, body)
	require.NoError(t, err)
	pos = 0
	req, err := ice.DecodeRequestData(body, &pos)
	require.NoError(t, err)
	return req
}

func readFullN(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func newTestPair(t *testing.T) (*Proxy, net.Conn) {
	t.Helper()
	client, server := net.Pipe()

	// The server half must answer ValidateConnection before NewProxy
	// returns, so script it on a goroutine.
	go writeFrame(t, server, ice.MsgValidateConnection, nil)

	p, err := NewProxy(context.Background(), fakeDialer{conn: client}, "fake", 0, ice.NewIdentity("Test"),
		WithDeadline(2*time.Second), WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	return p, server
}

func TestHandshakeAndPingRoundtrip(t *testing.T) {
	p, server := newTestPair(t)
	defer p.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- p.IcePing()
	}()

	req := readRequest(t, server)
	require.Equal(t, "ice_ping", req.Operation)
	require.Equal(t, ice.ModeIdempotent, req.Mode)

	reply := ice.ReplyData{RequestID: req.RequestID, Status: ice.StatusOk, Body: ice.EmptyEncapsulation()}
	writeFrame(t, server, ice.MsgReply, ice.EncodeReplyData(nil, reply))

	require.NoError(t, <-done)
}

func TestOutOfOrderReplyCorrelation(t *testing.T) {
	p, server := newTestPair(t)
	defer p.Close()
	defer server.Close()

	resultA := make(chan error, 1)
	resultB := make(chan error, 1)

	go func() { resultA <- p.IcePing() }()
	reqA := readRequest(t, server)

	go func() { resultB <- p.IcePing() }()
	reqB := readRequest(t, server)

	require.NotEqual(t, reqA.RequestID, reqB.RequestID)

	// Deliver B's reply before A's; each caller must still get its own.
	writeFrame(t, server, ice.MsgReply, ice.EncodeReplyData(nil, ice.ReplyData{
		RequestID: reqB.RequestID, Status: ice.StatusOk, Body: ice.EmptyEncapsulation(),
	}))
	writeFrame(t, server, ice.MsgReply, ice.EncodeReplyData(nil, ice.ReplyData{
		RequestID: reqA.RequestID, Status: ice.StatusOk, Body: ice.EmptyEncapsulation(),
	}))

	require.NoError(t, <-resultA)
	require.NoError(t, <-resultB)
}

func TestDispatchTimesOutWithoutReply(t *testing.T) {
	p, server := newTestPair(t)
	defer p.Close()
	defer server.Close()

	p.deadline = 20 * time.Millisecond
	err := p.IcePing()
	require.Error(t, err)
	var f *ice.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, ice.TimeoutFault, f.Kind)
}

func TestRemoteFaultOnUnknownLocalException(t *testing.T) {
	p, server := newTestPair(t)
	defer p.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() { done <- p.IcePing() }()

	req := readRequest(t, server)
	writeFrame(t, server, ice.MsgReply, ice.EncodeReplyData(nil, ice.ReplyData{
		RequestID: req.RequestID, Status: ice.StatusUnknownLocalException, Cause: "boom",
	}))

	err := <-done
	require.Error(t, err)
	var f *ice.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, ice.RemoteFault, f.Kind)
	require.Equal(t, "boom", f.Cause)
}

func TestCloseSendsCloseConnection(t *testing.T) {
	p, server := newTestPair(t)

	closeDone := make(chan struct{})
	go func() {
		p.Close()
		close(closeDone)
	}()

	headerBuf := make([]byte, ice.HeaderSize)
	_, err := readFullN(server, headerBuf)
	require.NoError(t, err)
	pos := 0
	header, err := ice.DecodeHeader(headerBuf, &pos)
	require.NoError(t, err)
	require.Equal(t, ice.MsgCloseConnection, header.MessageType)
	require.Equal(t, ice.HeaderSize, int(header.MessageSize))

	server.Close()
	<-closeDone
}
