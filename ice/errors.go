package ice

import "fmt"

// FaultKind discriminates the error kinds named in the protocol
// design: every failure the codec, transport, or connection engine
// can raise surfaces as one of these, never a bare panic.
type FaultKind int

const (
	// ProtocolFault: unexpected magic, unknown message type, reply
	// status out of range, message shorter than required.
	ProtocolFault FaultKind = iota
	// DecodingFault: buffer underrun, malformed UTF-8, enum out of range.
	DecodingFault
	// ParsingFault: Slice source syntactically invalid.
	ParsingFault
	// PropertyFault: a required configuration key is missing.
	PropertyFault
	// RemoteFault: reply status 7 (UnknownLocalException), carries a cause string.
	RemoteFault
	// UserFault: reply status 1 (UserException), carries the decoded exception value.
	UserFault
	// TimeoutFault: a reply did not arrive before the deadline.
	TimeoutFault
	// TransportFault: I/O error on the underlying stream.
	TransportFault
)

func (k FaultKind) String() string {
	switch k {
	case ProtocolFault:
		return "ProtocolFault"
	case DecodingFault:
		return "DecodingFault"
	case ParsingFault:
		return "ParsingFault"
	case PropertyFault:
		return "PropertyFault"
	case RemoteFault:
		return "RemoteFault"
	case UserFault:
		return "UserFault"
	case TimeoutFault:
		return "TimeoutFault"
	case TransportFault:
		return "TransportFault"
	default:
		return "UnknownFault"
	}
}

// Fault is the single structured error type every Ice layer returns.
type Fault struct {
	Kind FaultKind
	Msg  string
	Err  error // wrapped cause, if any

	// Cause is the UTF-8 string carried by a status-7 reply.
	Cause string
	// Status is the reply status that produced a RemoteFault/UserFault,
	// or -1 when not applicable.
	Status int
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("ice: %s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("ice: %s: %s", f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error { return f.Err }

func newFault(kind FaultKind, msg string) *Fault {
	return &Fault{Kind: kind, Msg: msg, Status: -1}
}

func newDecodingFault(msg string) *Fault      { return newFault(DecodingFault, msg) }
func newProtocolFault(msg string) *Fault      { return newFault(ProtocolFault, msg) }

// NewProtocolFault builds a ProtocolFault with a formatted message.
func NewProtocolFault(format string, args ...interface{}) *Fault {
	return newProtocolFault(fmt.Sprintf(format, args...))
}

// NewDecodingFault builds a DecodingFault with a formatted message.
func NewDecodingFault(format string, args ...interface{}) *Fault {
	return newDecodingFault(fmt.Sprintf(format, args...))
}

// NewParsingFault builds a ParsingFault with a formatted message.
func NewParsingFault(format string, args ...interface{}) *Fault {
	return newFault(ParsingFault, fmt.Sprintf(format, args...))
}

// NewPropertyFault builds a PropertyFault naming the missing key.
func NewPropertyFault(key string) *Fault {
	return newFault(PropertyFault, fmt.Sprintf("missing required property %q", key))
}

// NewTimeoutFault builds a TimeoutFault describing what was awaited.
func NewTimeoutFault(format string, args ...interface{}) *Fault {
	return newFault(TimeoutFault, fmt.Sprintf(format, args...))
}

// NewTransportFault wraps an underlying I/O error as a TransportFault.
func NewTransportFault(msg string, err error) *Fault {
	return &Fault{Kind: TransportFault, Msg: msg, Err: err, Status: -1}
}

// NewRemoteFault builds a RemoteFault from a status-7 reply's cause string.
func NewRemoteFault(cause string) *Fault {
	return &Fault{Kind: RemoteFault, Msg: "remote exception", Cause: cause, Status: 7}
}

// NewUserFault builds a UserFault wrapping the stub-decoded exception value.
func NewUserFault(err error) *Fault {
	return &Fault{Kind: UserFault, Msg: "user exception", Err: err, Status: 1}
}
