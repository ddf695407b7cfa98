package ice

// EncodeSeq appends a Size-prefixed sequence of T, each written by enc.
// Generated code calls this for every sequence<T> member; it keeps the
// generator from emitting a bespoke encode loop per element type.
func EncodeSeq[T any](buf []byte, seq []T, enc func([]byte, T) []byte) []byte {
	buf = EncodeSize(buf, len(seq))
	for _, v := range seq {
		buf = enc(buf, v)
	}
	return buf
}

// DecodeSeq reads a Size-prefixed sequence of T, each read by dec.
func DecodeSeq[T any](buf []byte, pos *int, dec func([]byte, *int) (T, error)) ([]T, error) {
	n, err := DecodeSize(buf, pos)
	if err != nil {
		return nil, err
	}
	seq := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := dec(buf, pos)
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
	}
	return seq, nil
}

// EncodeByteSeq appends a Size-prefixed sequence<byte> in one copy,
// since byte sequences need no per-element marshalling.
func EncodeByteSeq(buf []byte, seq []byte) []byte {
	buf = EncodeSize(buf, len(seq))
	return append(buf, seq...)
}

// DecodeByteSeq reads a Size-prefixed sequence<byte>.
func DecodeByteSeq(buf []byte, pos *int) ([]byte, error) {
	n, err := DecodeSize(buf, pos)
	if err != nil {
		return nil, err
	}
	if *pos+n > len(buf) {
		return nil, newDecodingFault("byte sequence: buffer underrun")
	}
	out := make([]byte, n)
	copy(out, buf[*pos:*pos+n])
	*pos += n
	return out, nil
}
