package ice

import (
	"encoding/binary"
	"math"
)

// EncodeBool appends a single 0/1 byte.
func EncodeBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// DecodeBool reads a single byte and interprets it as a boolean.
func DecodeBool(buf []byte, pos *int) (bool, error) {
	if *pos >= len(buf) {
		return false, newDecodingFault("bool: buffer underrun")
	}
	v := buf[*pos]
	*pos++
	return v != 0, nil
}

// EncodeByte appends a single byte.
func EncodeByte(buf []byte, v byte) []byte { return append(buf, v) }

// DecodeByte reads a single byte.
func DecodeByte(buf []byte, pos *int) (byte, error) {
	if *pos >= len(buf) {
		return 0, newDecodingFault("byte: buffer underrun")
	}
	v := buf[*pos]
	*pos++
	return v, nil
}

// EncodeShort appends a little-endian int16.
func EncodeShort(buf []byte, v int16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], uint16(v))
	return append(buf, tmp[:]...)
}

// DecodeShort reads a little-endian int16.
func DecodeShort(buf []byte, pos *int) (int16, error) {
	if *pos+2 > len(buf) {
		return 0, newDecodingFault("short: buffer underrun")
	}
	v := int16(binary.LittleEndian.Uint16(buf[*pos : *pos+2]))
	*pos += 2
	return v, nil
}

// EncodeInt appends a little-endian int32.
func EncodeInt(buf []byte, v int32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(v))
	return append(buf, tmp[:]...)
}

// DecodeInt reads a little-endian int32.
func DecodeInt(buf []byte, pos *int) (int32, error) {
	if *pos+4 > len(buf) {
		return 0, newDecodingFault("int: buffer underrun")
	}
	v := int32(binary.LittleEndian.Uint32(buf[*pos : *pos+4]))
	*pos += 4
	return v, nil
}

// EncodeLong appends a little-endian int64.
func EncodeLong(buf []byte, v int64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	return append(buf, tmp[:]...)
}

// DecodeLong reads a little-endian int64.
func DecodeLong(buf []byte, pos *int) (int64, error) {
	if *pos+8 > len(buf) {
		return 0, newDecodingFault("long: buffer underrun")
	}
	v := int64(binary.LittleEndian.Uint64(buf[*pos : *pos+8]))
	*pos += 8
	return v, nil
}

// EncodeFloat appends a little-endian IEEE-754 float32.
func EncodeFloat(buf []byte, v float32) []byte {
	return EncodeInt(buf, int32(math.Float32bits(v)))
}

// DecodeFloat reads a little-endian IEEE-754 float32.
func DecodeFloat(buf []byte, pos *int) (float32, error) {
	bits, err := DecodeInt(buf, pos)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(bits)), nil
}

// EncodeDouble appends a little-endian IEEE-754 float64.
func EncodeDouble(buf []byte, v float64) []byte {
	return EncodeLong(buf, int64(math.Float64bits(v)))
}

// DecodeDouble reads a little-endian IEEE-754 float64.
func DecodeDouble(buf []byte, pos *int) (float64, error) {
	bits, err := DecodeLong(buf, pos)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}
