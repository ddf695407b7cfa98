// Package proxy implements the client connection engine: one Proxy per
// connection, multiplexing concurrent outstanding requests over a
// single duplex transport and correlating replies by request id.
package proxy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"icelink/ice"
	"icelink/logging"
	"icelink/transport"
)

const (
	defaultDeadline     = 30 * time.Second
	defaultPollInterval = time.Millisecond
)

// queuedMessage is one fully-parsed inbound message waiting to be
// claimed by the dispatch call (or handshake) that is expecting it.
type queuedMessage struct {
	msgType   byte
	requestID int32 // meaningful only when msgType == ice.MsgReply
	reply     ice.ReplyData
}

// Proxy owns one connection: identity, endpoint, and the read/write
// halves of the transport it is dialed against.
type Proxy struct {
	identity ice.Identity
	facet    []string

	dialer transport.Dialer
	host   string
	port   int

	defaultContext map[string]string

	deadline     time.Duration
	pollInterval time.Duration

	tr transport.Transport

	writeMu sync.Mutex

	nextRequestID int32

	queueMu sync.Mutex
	queue   []queuedMessage

	closed    atomic.Bool
	readerErr atomic.Pointer[error]
	readerWG  sync.WaitGroup
}

// Option configures a Proxy at construction.
type Option func(*Proxy)

// WithDeadline overrides the default 30-second reply wait.
func WithDeadline(d time.Duration) Option {
	return func(p *Proxy) { p.deadline = d }
}

// WithPollInterval overrides the default ~1ms outstanding-queue poll.
func WithPollInterval(d time.Duration) Option {
	return func(p *Proxy) { p.pollInterval = d }
}

// WithDefaultContext sets the context map used when a dispatch call
// supplies none of its own.
func WithDefaultContext(ctx map[string]string) Option {
	return func(p *Proxy) { p.defaultContext = ctx }
}

// WithFacet sets the facet sent with every request.
func WithFacet(facet []string) Option {
	return func(p *Proxy) { p.facet = facet }
}

// NewProxy dials (host, port) via dialer, performs the
// ValidateConnection handshake, and starts the background reader task.
func NewProxy(ctx context.Context, dialer transport.Dialer, host string, port int, identity ice.Identity, opts ...Option) (*Proxy, error) {
	tr, err := dialer.Dial(ctx, host, port)
	if err != nil {
		return nil, err
	}

	p := &Proxy{
		identity:     identity,
		facet:        []string{},
		dialer:       dialer,
		host:         host,
		port:         port,
		deadline:     defaultDeadline,
		pollInterval: defaultPollInterval,
		tr:           tr,
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.awaitValidateConnection(); err != nil {
		tr.Close()
		return nil, err
	}

	p.readerWG.Add(1)
	go p.readLoop()

	return p, nil
}

// awaitValidateConnection performs the synchronous handshake read: the
// very first message must be ValidateConnection, with no reader task
// running yet to race it.
func (p *Proxy) awaitValidateConnection() error {
	header, body, err := readFrame(p.tr)
	if err != nil {
		return ice.NewTransportFault("connection validation", err)
	}
	if header.MessageType != ice.MsgValidateConnection {
		return ice.NewProtocolFault("expected ValidateConnection, got message type %d", header.MessageType)
	}
	if len(body) != 0 {
		return ice.NewProtocolFault("ValidateConnection message carried a non-empty body")
	}
	return nil
}

// readFrame reads one Header-framed message and returns its header and
// body bytes.
func readFrame(tr transport.Transport) (ice.Header, []byte, error) {
	headerBuf := make([]byte, ice.HeaderSize)
	if _, err := readFull(tr, headerBuf); err != nil {
		return ice.Header{}, nil, err
	}
	pos := 0
	header, err := ice.DecodeHeader(headerBuf, &pos)
	if err != nil {
		return ice.Header{}, nil, err
	}
	bodyLen := int(header.MessageSize) - ice.HeaderSize
	if bodyLen < 0 {
		return ice.Header{}, nil, ice.NewProtocolFault("message size %d shorter than header", header.MessageSize)
	}
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if _, err := readFull(tr, body); err != nil {
			return ice.Header{}, nil, err
		}
	}
	return header, body, nil
}

func readFull(tr transport.Transport, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := tr.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// readLoop is the background reader task: it parses every inbound
// message and pushes a tagged entry onto the outstanding-message queue.
func (p *Proxy) readLoop() {
	defer p.readerWG.Done()
	for {
		header, body, err := readFrame(p.tr)
		if err != nil {
			p.failReader(ice.NewTransportFault("reader task", err))
			return
		}

		switch header.MessageType {
		case ice.MsgReply:
			pos := 0
			reply, err := ice.DecodeReplyData(body, &pos)
			if err != nil {
				p.failReader(err)
				return
			}
			logging.DebugLog(logging.SubsystemProxy, "reply id=%d status=%d", reply.RequestID, reply.Status)
			p.push(queuedMessage{msgType: ice.MsgReply, requestID: reply.RequestID, reply: reply})
		case ice.MsgValidateConnection:
			p.push(queuedMessage{msgType: ice.MsgValidateConnection})
		case ice.MsgCloseConnection:
			logging.DebugLog(logging.SubsystemProxy, "peer sent CloseConnection")
			p.closed.Store(true)
			p.tr.Close()
			return
		default:
			p.failReader(ice.NewProtocolFault("unexpected message type %d", header.MessageType))
			return
		}
	}
}

func (p *Proxy) failReader(err error) {
	logging.DebugError(logging.SubsystemProxy, "reader task", err)
	p.readerErr.Store(&err)
	p.closed.Store(true)
	p.tr.Close()
}

func (p *Proxy) push(m queuedMessage) {
	p.queueMu.Lock()
	p.queue = append(p.queue, m)
	p.queueMu.Unlock()
}

// waitForReply searches the outstanding-message queue for a reply
// matching requestID, polling at p.pollInterval until it is found or
// p.deadline elapses. A matching entry is removed from the queue; a
// non-match always releases the lock before sleeping.
func (p *Proxy) waitForReply(requestID int32) (ice.ReplyData, error) {
	deadline := time.Now().Add(p.deadline)
	for {
		p.queueMu.Lock()
		for i, m := range p.queue {
			if m.msgType == ice.MsgReply && m.requestID == requestID {
				p.queue = append(p.queue[:i], p.queue[i+1:]...)
				p.queueMu.Unlock()
				return m.reply, nil
			}
		}
		p.queueMu.Unlock()

		if p.closed.Load() {
			if errPtr := p.readerErr.Load(); errPtr != nil {
				return ice.ReplyData{}, *errPtr
			}
			return ice.ReplyData{}, ice.NewTransportFault("connection closed", fmt.Errorf("proxy closed while awaiting reply %d", requestID))
		}
		if time.Now().After(deadline) {
			return ice.ReplyData{}, ice.NewTimeoutFault("no reply for request %d within %s", requestID, p.deadline)
		}
		time.Sleep(p.pollInterval)
	}
}

// Dispatch implements ice.Dispatcher: it builds and sends a request,
// awaits the matching reply, and applies the generic portion of the
// reply-status contract. Status 1 (UserException) is passed back to
// the caller unresolved, since only the generated stub knows which
// exception type to decode it as.
func (p *Proxy) Dispatch(operation string, mode uint8, params ice.Encapsulation, context map[string]string) (ice.ReplyData, error) {
	if p.closed.Load() {
		return ice.ReplyData{}, ice.NewTransportFault("dispatch", fmt.Errorf("proxy already closed"))
	}

	ctx := context
	if ctx == nil {
		ctx = p.defaultContext
	}

	id := atomic.AddInt32(&p.nextRequestID, 1)
	req := ice.RequestData{
		RequestID: id,
		ID:        p.identity,
		Facet:     p.facet,
		Operation: operation,
		Mode:      mode,
		Context:   ctx,
		Params:    params,
	}

	body := ice.EncodeRequestData(nil, req)
	frame := ice.EncodeHeader(nil, ice.NewHeader(ice.MsgRequest, ice.HeaderSize+len(body)))
	frame = append(frame, body...)
	logging.DebugFrame(logging.SubsystemProxy, "SEND "+operation, frame)

	p.writeMu.Lock()
	_, err := p.tr.Write(frame)
	p.writeMu.Unlock()
	if err != nil {
		return ice.ReplyData{}, ice.NewTransportFault("write request", err)
	}

	reply, err := p.waitForReply(id)
	if err != nil {
		return ice.ReplyData{}, err
	}

	switch reply.Status {
	case ice.StatusOk, ice.StatusUserException:
		return reply, nil
	case ice.StatusUnknownLocalException:
		return ice.ReplyData{}, ice.NewRemoteFault(reply.Cause)
	default:
		return ice.ReplyData{}, ice.NewProtocolFault("unexpected reply status %d", reply.Status)
	}
}

// Close sends CloseConnection and terminates the reader task. It never
// panics on transport errors; it logs and continues.
func (p *Proxy) Close() {
	if p.closed.Swap(true) {
		return
	}

	frame := ice.EncodeHeader(nil, ice.NewHeader(ice.MsgCloseConnection, ice.HeaderSize))
	p.writeMu.Lock()
	_, err := p.tr.Write(frame)
	p.writeMu.Unlock()
	if err != nil {
		logging.DebugError(logging.SubsystemProxy, "close: write CloseConnection", err)
	}

	if err := p.tr.Close(); err != nil {
		logging.DebugError(logging.SubsystemProxy, "close: transport close", err)
	}
	logging.DebugDisconnect(logging.SubsystemProxy, fmt.Sprintf("%s:%d", p.host, p.port), "proxy closed")
	p.readerWG.Wait()
}

// Identity returns the proxy's target identity.
func (p *Proxy) Identity() ice.Identity { return p.identity }

// Tag reports the underlying transport's tag ("tcp" or "ssl").
func (p *Proxy) Tag() string { return p.tr.Tag() }
