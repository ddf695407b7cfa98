package ice

// Class head markers: a sliced class instance begins with one of
// these; any other byte means there is no class here and the cursor
// must step back.
const (
	ClassMarkerInstance byte = 0x01
	ClassMarkerAlternate byte = 0xFF
)

// ClassSlice is one slice of a (possibly multi-derived) class or
// exception instance: a type id, its declared members already encoded
// by the caller, and any trailing optional members the receiver's
// generated type doesn't recognize.
type ClassSlice struct {
	TypeID             string
	Members            []byte // pre-encoded member bytes, declaration order
	OptionalMembers     []byte // pre-encoded trailing (flag,value) pairs, already 0xFF-terminated
	HasOptionalMembers bool
	IsLastSlice        bool
}

// EncodeClassHead appends the class instance marker used to begin a
// sliced class on the wire.
func EncodeClassHead(buf []byte) []byte {
	return append(buf, ClassMarkerInstance)
}

// EncodeClassSlice appends one class slice: flags, string type id,
// members, and (if present) the optional-members trailer.
func EncodeClassSlice(buf []byte, s ClassSlice) []byte {
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

// DecodeClassHead reads the leading class marker byte. If the byte is
// neither 0x01 nor 0xFF, the cursor is left where it was and ok is
// false: there is no class instance here.
func DecodeClassHead(buf []byte, pos *int) (ok bool, err error) {
	if *pos >= len(buf) {
		return false, newDecodingFault("class head: buffer underrun")
	}
	b := buf[*pos]
	if b != ClassMarkerInstance && b != ClassMarkerAlternate {
		return false, nil
	}
	*pos++
	return true, nil
}

// DecodeClassSliceHeader reads a slice's flags and (if StringTypeId is
// set) its type id, returning enough to let the caller decode its
// declared members next.
func DecodeClassSliceHeader(buf []byte, pos *int) (flags SliceFlags, typeID string, err error) {
	flags, err = DecodeSliceFlags(buf, pos)
	if err != nil {
		return flags, "", err
	}
	if flags.TypeIDKind == TypeIDString {
		typeID, err = DecodeString(buf, pos)
		if err != nil {
			return flags, "", err
		}
	}
	return flags, typeID, nil
}

// OptionalMemberHandler decodes one tagged optional member's value
// once its storage-class byte has already been read; it is expected to
// advance pos exactly past the value.
type OptionalMemberHandler func(buf []byte, pos *int, typ uint8) error

// DecodeOptionalMembers reads a class or exception slice's trailing
// (flag, value) pairs until the 0xFF end-of-slice marker. For each tag
// the generated type recognizes (a key in handlers) it invokes the
// handler to decode the value; for any other tag it skips the value
// using only the storage-class bits, so unknown trailing optionals
// never disturb known members decoded either before or after them.
func DecodeOptionalMembers(buf []byte, pos *int, handlers map[uint8]OptionalMemberHandler) error {
	for {
		if *pos >= len(buf) {
			return newDecodingFault("trailing optionals: buffer underrun")
		}
		if buf[*pos] == optionalEndMarker {
			*pos++
			return nil
		}
		tag, typ, err := DecodeOptionalFlag(buf, pos)
		if err != nil {
			return err
		}
		if h, ok := handlers[tag]; ok {
			if err := h(buf, pos, typ); err != nil {
				return err
			}
			continue
		}
		if err := SkipOptionalValue(buf, pos, typ); err != nil {
			return err
		}
	}
}
