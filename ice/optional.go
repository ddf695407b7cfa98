package ice

// Optional storage-class tags, the low 3 bits of an optional flag byte.
const (
	OptionalTypeByte1       = 0 // 1-byte fixed
	OptionalTypeByte2       = 1 // 2-byte fixed
	OptionalTypeByte4       = 2 // 4-byte fixed
	OptionalTypeByte8       = 3 // 8-byte fixed
	OptionalTypeSize        = 4 // size-prefixed (string, sequence, dictionary)
	OptionalTypeFixedSize   = 5 // fixed-size-prefixed
	OptionalTypeClass       = 6 // class instance
	optionalEndMarker       = 0xFF
)

// EncodeOptionalFlag appends the one-byte optional flag (tag<<3)|type.
func EncodeOptionalFlag(buf []byte, tag, typ uint8) []byte {
	return append(buf, (tag<<3)|(typ&7))
}

// EncodeOptionalEnd appends the 0xFF end-of-optionals marker that
// terminates a class/exception slice's trailing optional members, or a
// function's trailing optional arguments.
func EncodeOptionalEnd(buf []byte) []byte {
	return append(buf, optionalEndMarker)
}

// DecodeOptionalFlag reads a one-byte optional flag, splitting it into
// tag and storage-class.
func DecodeOptionalFlag(buf []byte, pos *int) (tag, typ uint8, err error) {
	if *pos >= len(buf) {
		return 0, 0, newDecodingFault("optional flag: buffer underrun")
	}
	b := buf[*pos]
	*pos++
	return b >> 3, b & 7, nil
}

// SkipOptionalValue advances pos past a value of the given storage
// class without decoding it, so an unrecognized tag can be skipped
// using only the type bits of its flag byte.
func SkipOptionalValue(buf []byte, pos *int, typ uint8) error {
	switch typ {
	case OptionalTypeByte1:
		*pos++
	case OptionalTypeByte2:
		*pos += 2
	case OptionalTypeByte4:
		*pos += 4
	case OptionalTypeByte8:
		*pos += 8
	case OptionalTypeSize, OptionalTypeFixedSize:
		n, err := DecodeSize(buf, pos)
		if err != nil {
			return err
		}
		*pos += n
	case OptionalTypeClass:
		return newDecodingFault("optional: cannot skip class-typed optional")
	default:
		return newDecodingFault("optional: unknown storage class")
	}
	if *pos > len(buf) {
		return newDecodingFault("optional: buffer underrun while skipping")
	}
	return nil
}

// SliceFlags describes the header byte of a class or exception slice:
// the low two bits name the type-id encoding, the higher bits flag
// optional members, an indirection table, an explicit slice size, and
// whether this is the last slice in the chain.
type SliceFlags struct {
	TypeIDKind         SliceTypeIDKind
	HasOptionalMembers bool
	HasIndirectionTable bool
	HasSliceSize       bool
	IsLastSlice        bool
}

// SliceTypeIDKind is the low-two-bits type-id encoding of a slice flags byte.
type SliceTypeIDKind byte

const (
	TypeIDNone SliceTypeIDKind = iota
	TypeIDString
	TypeIDIndex
	TypeIDCompact
)

// EncodeSliceFlags packs a SliceFlags value into its one wire byte.
func EncodeSliceFlags(buf []byte, f SliceFlags) []byte {
	b := byte(f.TypeIDKind) & 0b11
	if f.HasOptionalMembers {
		b |= 0b100
	}
	if f.HasIndirectionTable {
		b |= 0b1000
	}
	if f.HasSliceSize {
		b |= 0b10000
	}
	if f.IsLastSlice {
		b |= 0b100000
	}
	return append(buf, b)
}

// DecodeSliceFlags reads a one-byte SliceFlags.
func DecodeSliceFlags(buf []byte, pos *int) (SliceFlags, error) {
	if *pos >= len(buf) {
		return SliceFlags{}, newDecodingFault("slice flags: buffer underrun")
	}
	b := buf[*pos]
	*pos++
	return SliceFlags{
		TypeIDKind:          SliceTypeIDKind(b & 0b11),
		HasOptionalMembers:  b&0b100 != 0,
		HasIndirectionTable: b&0b1000 != 0,
		HasSliceSize:        b&0b10000 != 0,
		IsLastSlice:         b&0b100000 != 0,
	}, nil
}
