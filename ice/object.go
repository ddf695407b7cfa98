package ice

// Dispatcher is the minimal capability a connection engine exposes to
// generated stubs: turn an operation name, mode, context, and
// parameter encapsulation into a reply. Everything else (building the
// request, waiting for it, decoding typed results) is stub or proxy
// logic built on top of this one call, keeping the surface generated
// code depends on as small as possible.
type Dispatcher interface {
	Dispatch(operation string, mode uint8, params Encapsulation, context map[string]string) (ReplyData, error)
}

// Object is satisfied by every generated (and the base) proxy type: the
// four built-in operations every Ice object exposes, marshalled as
// ordinary idempotent requests.
type Object interface {
	Dispatcher
	IcePing() error
	IceIsA(typeID string) (bool, error)
	IceID() (string, error)
	IceIDs() ([]string, error)
}

// Ping issues the built-in ice_ping operation: empty params, empty reply.
func Ping(d Dispatcher) error {
	reply, err := d.Dispatch("ice_ping", ModeIdempotent, EmptyEncapsulation(), nil)
	if err != nil {
		return err
	}
	return checkReplyStatus(reply)
}

// IsA issues the built-in ice_isA operation and decodes its boolean reply.
func IsA(d Dispatcher, typeID string) (bool, error) {
	params := NewEncapsulation(EncodeString(nil, typeID))
	reply, err := d.Dispatch("ice_isA", ModeIdempotent, params, nil)
	if err != nil {
		return false, err
	}
	if err := checkReplyStatus(reply); err != nil {
		return false, err
	}
	pos := 0
	return DecodeBool(reply.Body.Data, &pos)
}

// ID issues the built-in ice_id operation and decodes its string reply.
func ID(d Dispatcher) (string, error) {
	reply, err := d.Dispatch("ice_id", ModeIdempotent, EmptyEncapsulation(), nil)
	if err != nil {
		return "", err
	}
	if err := checkReplyStatus(reply); err != nil {
		return "", err
	}
	pos := 0
	return DecodeString(reply.Body.Data, &pos)
}

// IDs issues the built-in ice_ids operation and decodes its string-sequence reply.
func IDs(d Dispatcher) ([]string, error) {
	reply, err := d.Dispatch("ice_ids", ModeIdempotent, EmptyEncapsulation(), nil)
	if err != nil {
		return nil, err
	}
	if err := checkReplyStatus(reply); err != nil {
		return nil, err
	}
	pos := 0
	return DecodeStringSeq(reply.Body.Data, &pos)
}

// checkReplyStatus turns a non-Ok status into the appropriate fault for
// calls (like the built-ins above) that have no stub-declared exception
// type to decode into.
func checkReplyStatus(reply ReplyData) error {
	switch reply.Status {
	case StatusOk:
		return nil
	case StatusUnknownLocalException:
		return NewRemoteFault(reply.Cause)
	default:
		return newProtocolFault("unexpected reply status for built-in operation")
	}
}
