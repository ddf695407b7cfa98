// Package server implements the server side of the protocol: a
// listener accepts connections, validates them, reads request
// messages, looks up the target object by identity, invokes the
// registered handler, and writes back the reply.
package server

import (
	"sync"

	"icelink/ice"
	"icelink/logging"
	"icelink/transport"
)

// Servant couples a user-supplied dispatch handler (typically a
// generated <Iface>Server value) with the type ids it implements,
// most-derived first, so the adapter can answer the built-in
// ice_ping/ice_isA/ice_id/ice_ids operations on its behalf.
type Servant struct {
	Handler ice.Dispatcher
	TypeIDs []string
}

// objectTypeID is the root type id every Ice object implements.
const objectTypeID = "::Ice::Object"

// Adapter holds the servants reachable through one listening endpoint,
// keyed by identity string form.
type Adapter struct {
	name string

	mu       sync.RWMutex
	servants map[string]Servant

	closeMu  sync.Mutex
	closed   bool
	listener transport.Listener
	connWG   sync.WaitGroup
}

// NewAdapter returns an empty adapter named name (the adapter id a
// locator would hand out for it).
func NewAdapter(name string) *Adapter {
	return &Adapter{name: name, servants: make(map[string]Servant)}
}

// Name returns the adapter id.
func (a *Adapter) Name() string { return a.name }

// Add registers s under ident, replacing any previous servant there.
func (a *Adapter) Add(ident ice.Identity, s Servant) {
	a.mu.Lock()
	a.servants[ident.String()] = s
	a.mu.Unlock()
}

// Remove drops the servant registered under ident.
func (a *Adapter) Remove(ident ice.Identity) {
	a.mu.Lock()
	delete(a.servants, ident.String())
	a.mu.Unlock()
}

func (a *Adapter) lookup(ident ice.Identity) (Servant, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.servants[ident.String()]
	return s, ok
}

// Serve accepts connections from l until it is closed, serving each on
// its own goroutine. It returns the accept error that ended the loop.
func (a *Adapter) Serve(l transport.Listener) error {
	a.closeMu.Lock()
	a.listener = l
	a.closeMu.Unlock()

	for {
		tr, err := l.Accept()
		if err != nil {
			a.closeMu.Lock()
			closed := a.closed
			a.closeMu.Unlock()
			a.connWG.Wait()
			if closed {
				return nil
			}
			return err
		}
		a.connWG.Add(1)
		go func() {
			defer a.connWG.Done()
			if err := a.ServeConn(tr); err != nil {
				logging.DebugError(logging.SubsystemDispatch, "connection", err)
			}
		}()
	}
}

// Close stops the accept loop by closing the listener. It does not
// wait: Serve waits for in-flight connections to end before returning.
func (a *Adapter) Close() {
	a.closeMu.Lock()
	a.closed = true
	l := a.listener
	a.closeMu.Unlock()
	if l != nil {
		l.Close()
	}
}

// ServeConn drives one connection: it sends ValidateConnection, then
// reads and answers request messages until the peer sends
// CloseConnection or the transport fails. Requests on one connection
// are served sequentially; replies therefore go out in request order,
// which clients must not rely on but may observe.
func (a *Adapter) ServeConn(tr transport.Transport) error {
	defer tr.Close()

	if err := writeFrame(tr, ice.MsgValidateConnection, nil); err != nil {
		return ice.NewTransportFault("write ValidateConnection", err)
	}

	for {
		header, body, err := readFrame(tr)
		if err != nil {
			return ice.NewTransportFault("read request", err)
		}

		switch header.MessageType {
		case ice.MsgRequest:
			pos := 0
			req, err := ice.DecodeRequestData(body, &pos)
			if err != nil {
				return err
			}
			reply := a.dispatch(req)
			if err := writeFrame(tr, ice.MsgReply, ice.EncodeReplyData(nil, reply)); err != nil {
				return ice.NewTransportFault("write reply", err)
			}
		case ice.MsgCloseConnection:
			logging.DebugLog(logging.SubsystemDispatch, "peer closed connection")
			return nil
		case ice.MsgValidateConnection:
			// Harmless; a peer may re-validate.
		default:
			return ice.NewProtocolFault("unexpected message type %d", header.MessageType)
		}
	}
}

// dispatch routes one request to its servant and converts the outcome
// into a ReplyData. Handler errors that the generated shim did not
// already map to a user exception surface as status 7 with the error
// text as the cause string, matching what a client decodes into a
// remote-exception fault.
func (a *Adapter) dispatch(req ice.RequestData) ice.ReplyData {
	logging.DebugLog(logging.SubsystemDispatch, "request id=%d ident=%s op=%s", req.RequestID, req.ID, req.Operation)

	s, ok := a.lookup(req.ID)
	if !ok {
		return unknownLocalException(req.RequestID, "object not found: "+req.ID.String())
	}

	if reply, handled := a.dispatchBuiltin(s, req); handled {
		return reply
	}

	reply, err := s.Handler.Dispatch(req.Operation, req.Mode, req.Params, req.Context)
	if err != nil {
		logging.DebugError(logging.SubsystemDispatch, req.Operation, err)
		return unknownLocalException(req.RequestID, err.Error())
	}
	reply.RequestID = req.RequestID
	return reply
}

// dispatchBuiltin answers the four operations every object exposes
// without consulting the servant's handler, using the registered type
// ids.
func (a *Adapter) dispatchBuiltin(s Servant, req ice.RequestData) (ice.ReplyData, bool) {
	switch req.Operation {
	case "ice_ping":
		return okReply(req.RequestID, nil), true
	case "ice_isA":
		pos := 0
		typeID, err := ice.DecodeString(req.Params.Data, &pos)
		if err != nil {
			return unknownLocalException(req.RequestID, err.Error()), true
		}
		isA := typeID == objectTypeID
		for _, id := range s.TypeIDs {
			if id == typeID {
				isA = true
				break
			}
		}
		return okReply(req.RequestID, ice.EncodeBool(nil, isA)), true
	case "ice_id":
		id := objectTypeID
		if len(s.TypeIDs) > 0 {
			id = s.TypeIDs[0]
		}
		return okReply(req.RequestID, ice.EncodeString(nil, id)), true
	case "ice_ids":
		ids := append(append([]string{}, s.TypeIDs...), objectTypeID)
		return okReply(req.RequestID, ice.EncodeStringSeq(nil, ids)), true
	default:
		return ice.ReplyData{}, false
	}
}

func okReply(requestID int32, body []byte) ice.ReplyData {
	if body == nil {
		return ice.ReplyData{RequestID: requestID, Status: ice.StatusOk, Body: ice.EmptyEncapsulation()}
	}
	return ice.ReplyData{RequestID: requestID, Status: ice.StatusOk, Body: ice.NewEncapsulation(body)}
}

func unknownLocalException(requestID int32, cause string) ice.ReplyData {
	return ice.ReplyData{
		RequestID: requestID,
		Status:    ice.StatusUnknownLocalException,
		Cause:     cause,
	}
}

func writeFrame(tr transport.Transport, msgType byte, body []byte) error {
	frame := ice.EncodeHeader(nil, ice.NewHeader(msgType, ice.HeaderSize+len(body)))
	frame = append(frame, body...)
	_, err := tr.Write(frame)
	return err
}

func readFrame(tr transport.Transport) (ice.Header, []byte, error) {
	headerBuf := make([]byte, ice.HeaderSize)
	if err := readFull(tr, headerBuf); err != nil {
		return ice.Header{}, nil, err
	}
	pos := 0
	header, err := ice.DecodeHeader(headerBuf, &pos)
	if err != nil {
		return ice.Header{}, nil, err
	}
	bodyLen := int(header.MessageSize) - ice.HeaderSize
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		if err := readFull(tr, body); err != nil {
			return ice.Header{}, nil, err
		}
	}
	return header, body, nil
}

func readFull(tr transport.Transport, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := tr.Read(buf[total:])
		total += n
		if err != nil {
			return err
		}
	}
	return nil
}
