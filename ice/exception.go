package ice

// EncodeExceptionSlice appends one exception slice: the same layout as
// a class slice but without the leading marker byte.
func EncodeExceptionSlice(buf []byte, s ClassSlice) []byte {
	flags := SliceFlags{
		TypeIDKind:         TypeIDString,
		HasOptionalMembers: s.HasOptionalMembers,
		IsLastSlice:        s.IsLastSlice,
	}
	buf = EncodeSliceFlags(buf, flags)
	buf = EncodeString(buf, s.TypeID)
	buf = append(buf, s.Members...)
	if s.HasOptionalMembers {
		buf = append(buf, s.OptionalMembers...)
	}
	return buf
}

// DecodeExceptionSliceHeader reads an exception slice's flags and type
// id; identical to DecodeClassSliceHeader, provided under its own name
// since exceptions never have a leading marker byte to skip first.
func DecodeExceptionSliceHeader(buf []byte, pos *int) (flags SliceFlags, typeID string, err error) {
	return DecodeClassSliceHeader(buf, pos)
}
