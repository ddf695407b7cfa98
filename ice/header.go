package ice

// Message types carried in a Header's message-type byte.
const (
	MsgRequest           byte = 0
	MsgReply             byte = 2
	MsgValidateConnection byte = 3
	MsgCloseConnection   byte = 4
)

// HeaderSize is the fixed 14-byte length of an Ice message envelope.
const HeaderSize = 14

var magicBytes = [4]byte{'I', 'c', 'e', 'P'}

// Header is the 14-byte envelope in front of every Ice message:
// magic, protocol version, encoding version, message type, compression
// status (always 0 in this runtime), and total message size.
type Header struct {
	MessageType       byte
	CompressionStatus byte
	MessageSize       int32
}

// NewHeader builds a Header for messageType with the given total size
// (header + body). messageSize takes a plain int since callers usually
// derive it from HeaderSize+len(body); the wire field is an i32.
func NewHeader(messageType byte, messageSize int) Header {
	return Header{MessageType: messageType, MessageSize: int32(messageSize)}
}

// EncodeHeader appends "IceP", protocol (1,0), encoding (1,0),
// message-type, compression (0), message-size(LE i32).
func EncodeHeader(buf []byte, h Header) []byte {
	buf = append(buf, magicBytes[:]...)
	buf = append(buf, 1, 0) // protocol major/minor
	buf = append(buf, 1, 0) // encoding major/minor
	buf = append(buf, h.MessageType, h.CompressionStatus)
	buf = EncodeInt(buf, h.MessageSize)
	return buf
}

// DecodeHeader reads a Header, rejecting a wrong magic as a
// ProtocolFault and anything shorter than HeaderSize as a fault too.
func DecodeHeader(buf []byte, pos *int) (Header, error) {
	if *pos+HeaderSize > len(buf) {
		return Header{}, newDecodingFault("header: buffer underrun")
	}
	start := *pos
	if buf[start] != magicBytes[0] || buf[start+1] != magicBytes[1] ||
		buf[start+2] != magicBytes[2] || buf[start+3] != magicBytes[3] {
		return Header{}, newProtocolFault("header: bad magic")
	}
	*pos += 4
	*pos += 2 // protocol version, not validated beyond presence
	*pos += 2 // encoding version
	msgType, err := DecodeByte(buf, pos)
	if err != nil {
		return Header{}, err
	}
	compression, err := DecodeByte(buf, pos)
	if err != nil {
		return Header{}, err
	}
	size, err := DecodeInt(buf, pos)
	if err != nil {
		return Header{}, err
	}
	if size < HeaderSize {
		return Header{}, newProtocolFault("header: message size smaller than header")
	}
	return Header{MessageType: msgType, CompressionStatus: compression, MessageSize: size}, nil
}
