package server

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"icelink/ice"
	"icelink/transport"
)

// pipeTransport adapts one half of a net.Pipe() to transport.Transport,
// the same scripted-peer harness the proxy tests use.
type pipeTransport struct {
	net.Conn
}

func (p pipeTransport) Tag() string { return "pipe" }

// echoServant answers "echo" by returning its string parameter and
// fails every other operation.
type echoServant struct{}

func (echoServant) Dispatch(operation string, mode uint8, params ice.Encapsulation, context map[string]string) (ice.ReplyData, error) {
	if operation != "echo" {
		return ice.ReplyData{}, ice.NewProtocolFault("unknown operation %s", operation)
	}
	pos := 0
	s, err := ice.DecodeString(params.Data, &pos)
	if err != nil {
		return ice.ReplyData{}, err
	}
	return ice.ReplyData{Status: ice.StatusOk, Body: ice.NewEncapsulation(ice.EncodeString(nil, s))}, nil
}

func startConn(t *testing.T, a *Adapter) net.Conn {
	t.Helper()
	client, serverHalf := net.Pipe()
	go a.ServeConn(pipeTransport{serverHalf})

	// The adapter speaks first: ValidateConnection.
	header := readHeader(t, client)
	require.Equal(t, ice.MsgValidateConnection, header.MessageType)
	require.Equal(t, ice.HeaderSize, int(header.MessageSize))
	return client
}

func readHeader(t *testing.T, conn net.Conn) ice.Header {
	t.Helper()
	buf := make([]byte, ice.HeaderSize)
	readConnFull(t, conn, buf)
	pos := 0
	header, err := ice.DecodeHeader(buf, &pos)
	require.NoError(t, err)
	return header
}

func readConnFull(t *testing.T, conn net.Conn, buf []byte) {
	t.Helper()
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		require.NoError(t, err)
		total += n
	}
}

func sendRequest(t *testing.T, conn net.Conn, req ice.RequestData) {
	t.Helper()
	body := ice.EncodeRequestData(nil, req)
	frame := ice.EncodeHeader(nil, ice.NewHeader(ice.MsgRequest, ice.HeaderSize+len(body)))
	frame = append(frame, body...)
	_, err := conn.Write(frame)
	require.NoError(t, err)
}

func readReply(t *testing.T, conn net.Conn) ice.ReplyData {
	t.Helper()
	header := readHeader(t, conn)
	require.Equal(t, ice.MsgReply, header.MessageType)
	body := make([]byte, int(header.MessageSize)-ice.HeaderSize)
	readConnFull(t, conn, body)
	pos := 0
	reply, err := ice.DecodeReplyData(body, &pos)
	require.NoError(t, err)
	return reply
}

func newEchoAdapter() *Adapter {
	a := NewAdapter("EchoAdapter")
	a.Add(ice.NewIdentity("echo"), Servant{
		Handler: echoServant{},
		TypeIDs: []string{"::Test::Echo"},
	})
	return a
}

func TestServeConnAnswersRequest(t *testing.T) {
	conn := startConn(t, newEchoAdapter())
	defer conn.Close()

	sendRequest(t, conn, ice.RequestData{
		RequestID: 7,
		ID:        ice.NewIdentity("echo"),
		Facet:     []string{},
		Operation: "echo",
		Params:    ice.NewEncapsulation(ice.EncodeString(nil, "hi")),
	})

	reply := readReply(t, conn)
	require.Equal(t, int32(7), reply.RequestID)
	require.Equal(t, ice.StatusOk, reply.Status)
	pos := 0
	s, err := ice.DecodeString(reply.Body.Data, &pos)
	require.NoError(t, err)
	require.Equal(t, "hi", s)
}

func TestServeConnObjectNotFound(t *testing.T) {
	conn := startConn(t, newEchoAdapter())
	defer conn.Close()

	sendRequest(t, conn, ice.RequestData{
		RequestID: 1,
		ID:        ice.NewIdentity("missing"),
		Facet:     []string{},
		Operation: "echo",
		Params:    ice.EmptyEncapsulation(),
	})

	reply := readReply(t, conn)
	require.Equal(t, ice.StatusUnknownLocalException, reply.Status)
	require.Contains(t, reply.Cause, "missing")
}

func TestServeConnBuiltins(t *testing.T) {
	conn := startConn(t, newEchoAdapter())
	defer conn.Close()

	sendRequest(t, conn, ice.RequestData{
		RequestID: 1,
		ID:        ice.NewIdentity("echo"),
		Facet:     []string{},
		Operation: "ice_isA",
		Mode:      ice.ModeIdempotent,
		Params:    ice.NewEncapsulation(ice.EncodeString(nil, "::Test::Echo")),
	})
	reply := readReply(t, conn)
	require.Equal(t, ice.StatusOk, reply.Status)
	pos := 0
	isA, err := ice.DecodeBool(reply.Body.Data, &pos)
	require.NoError(t, err)
	require.True(t, isA)

	sendRequest(t, conn, ice.RequestData{
		RequestID: 2,
		ID:        ice.NewIdentity("echo"),
		Facet:     []string{},
		Operation: "ice_isA",
		Mode:      ice.ModeIdempotent,
		Params:    ice.NewEncapsulation(ice.EncodeString(nil, "::Test::Other")),
	})
	reply = readReply(t, conn)
	pos = 0
	isA, err = ice.DecodeBool(reply.Body.Data, &pos)
	require.NoError(t, err)
	require.False(t, isA)

	sendRequest(t, conn, ice.RequestData{
		RequestID: 3,
		ID:        ice.NewIdentity("echo"),
		Facet:     []string{},
		Operation: "ice_ids",
		Mode:      ice.ModeIdempotent,
		Params:    ice.EmptyEncapsulation(),
	})
	reply = readReply(t, conn)
	pos = 0
	ids, err := ice.DecodeStringSeq(reply.Body.Data, &pos)
	require.NoError(t, err)
	require.Equal(t, []string{"::Test::Echo", "::Ice::Object"}, ids)
}

func TestServeConnStopsOnCloseConnection(t *testing.T) {
	a := newEchoAdapter()
	client, serverHalf := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- a.ServeConn(pipeTransport{serverHalf}) }()

	readHeader(t, client) // ValidateConnection

	frame := ice.EncodeHeader(nil, ice.NewHeader(ice.MsgCloseConnection, ice.HeaderSize))
	_, err := client.Write(frame)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeConn did not return after CloseConnection")
	}
}

func TestServeAcceptLoop(t *testing.T) {
	a := newEchoAdapter()
	l, err := transport.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- a.Serve(l) }()

	conn, err := net.Dial("tcp", l.Addr())
	require.NoError(t, err)
	defer conn.Close()

	header := readHeader(t, conn)
	require.Equal(t, ice.MsgValidateConnection, header.MessageType)

	sendRequest(t, conn, ice.RequestData{
		RequestID: 1,
		ID:        ice.NewIdentity("echo"),
		Facet:     []string{},
		Operation: "ice_ping",
		Mode:      ice.ModeIdempotent,
		Params:    ice.EmptyEncapsulation(),
	})
	reply := readReply(t, conn)
	require.Equal(t, ice.StatusOk, reply.Status)

	// Serve waits for in-flight connections, so hang up before closing
	// the adapter.
	frame := ice.EncodeHeader(nil, ice.NewHeader(ice.MsgCloseConnection, ice.HeaderSize))
	_, err = conn.Write(frame)
	require.NoError(t, err)

	a.Close()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}
