package ice

// Encapsulation wraps any Ice-encoded payload with the encoding
// version it was written with, so a decoder always knows how to read
// it back regardless of what encoding the rest of the stream uses.
type Encapsulation struct {
	Size  int32
	Major uint8
	Minor uint8
	Data  []byte
}

// EmptyEncapsulation is the canonical (6, 1, 1, ∅) empty encapsulation.
func EmptyEncapsulation() Encapsulation {
	return Encapsulation{Size: 6, Major: 1, Minor: 1}
}

// NewEncapsulation wraps data as a 1.1-encoded encapsulation, setting
// Size to the required 6+len(data) invariant.
func NewEncapsulation(data []byte) Encapsulation {
	return Encapsulation{Size: int32(6 + len(data)), Major: 1, Minor: 1, Data: data}
}

// EncodeEncapsulation appends size(4B,LE) major(1B) minor(1B) data.
func EncodeEncapsulation(buf []byte, e Encapsulation) []byte {
	buf = EncodeInt(buf, e.Size)
	buf = EncodeByte(buf, e.Major)
	buf = EncodeByte(buf, e.Minor)
	return append(buf, e.Data...)
}

// DecodeEncapsulation reads an encapsulation and validates the
// size = 6 + len(data) invariant.
func DecodeEncapsulation(buf []byte, pos *int) (Encapsulation, error) {
	size, err := DecodeInt(buf, pos)
	if err != nil {
		return Encapsulation{}, err
	}
	if size < 6 {
		return Encapsulation{}, newDecodingFault("encapsulation: size < 6")
	}
	major, err := DecodeByte(buf, pos)
	if err != nil {
		return Encapsulation{}, err
	}
	minor, err := DecodeByte(buf, pos)
	if err != nil {
		return Encapsulation{}, err
	}
	dataLen := int(size) - 6
	if *pos+dataLen > len(buf) {
		return Encapsulation{}, newDecodingFault("encapsulation: buffer underrun")
	}
	// A nil Data for the empty encapsulation keeps decode(encode(empty))
	// identical to EmptyEncapsulation().
	var data []byte
	if dataLen > 0 {
		data = make([]byte, dataLen)
		copy(data, buf[*pos:*pos+dataLen])
	}
	*pos += dataLen
	return Encapsulation{Size: size, Major: major, Minor: minor, Data: data}, nil
}
