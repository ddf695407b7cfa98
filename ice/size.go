// Package ice implements the Ice 1.0 wire codec and 1.1 encapsulation
// encoding: every primitive, compound, and message type that travels
// over an Ice connection, plus the fault kinds the codec can raise.
package ice

import "encoding/binary"

// Size is Ice's variable-width length prefix ("IceSize" in the wire
// spec): one byte for values below 255, otherwise a 0xFF marker
// followed by a little-endian int32.
type Size int32

// EncodeSize appends the wire encoding of n to buf. n must be
// non-negative; every call site passes a len() result or a decoder-
// validated value.
func EncodeSize(buf []byte, n int) []byte {
	if n < 255 {
		return append(buf, byte(n))
	}
	buf = append(buf, 0xFF)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	return append(buf, tmp[:]...)
}

// DecodeSize reads a Size starting at buf[*pos], advancing *pos past
// it, and returns the decoded value.
func DecodeSize(buf []byte, pos *int) (int, error) {
	if *pos >= len(buf) {
		return 0, newDecodingFault("size: buffer underrun")
	}
	b := buf[*pos]
	if b != 0xFF {
		*pos++
		return int(b), nil
	}
	if *pos+5 > len(buf) {
		return 0, newDecodingFault("size: buffer underrun reading extended size")
	}
	n := int32(binary.LittleEndian.Uint32(buf[*pos+1 : *pos+5]))
	*pos += 5
	if n < 0 {
		return 0, newDecodingFault("size: negative size")
	}
	return int(n), nil
}
