package ice

// EncodeEnum appends the Size-encoded integer discriminant of an
// enumeration value. Generated enum types call this directly with
// their int(value); discriminants are declared variant indices, never
// negative.
func EncodeEnum(buf []byte, discriminant int) []byte {
	return EncodeSize(buf, discriminant)
}

// DecodeEnum reads a Size-encoded discriminant and validates it against
// the set of discriminants the generated enum type declares.
func DecodeEnum(buf []byte, pos *int, valid func(int) bool) (int, error) {
	n, err := DecodeSize(buf, pos)
	if err != nil {
		return 0, err
	}
	if !valid(n) {
		return 0, NewDecodingFault("enum: discriminant %d out of range", n)
	}
	return n, nil
}
