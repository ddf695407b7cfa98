package ice

import "unicode/utf8"

// EncodeString appends a Size-prefixed UTF-8 string.
func EncodeString(buf []byte, s string) []byte {
	buf = EncodeSize(buf, len(s))
	return append(buf, s...)
}

// DecodeString reads a Size-prefixed UTF-8 string, rejecting malformed
// UTF-8 input per the codec's failure policy.
func DecodeString(buf []byte, pos *int) (string, error) {
	n, err := DecodeSize(buf, pos)
	if err != nil {
		return "", err
	}
	if *pos+n > len(buf) {
		return "", newDecodingFault("string: buffer underrun")
	}
	raw := buf[*pos : *pos+n]
	if !utf8.Valid(raw) {
		return "", newDecodingFault("string: invalid UTF-8")
	}
	*pos += n
	return string(raw), nil
}

// EncodeStringSeq appends a Size-prefixed sequence of strings.
func EncodeStringSeq(buf []byte, seq []string) []byte {
	buf = EncodeSize(buf, len(seq))
	for _, s := range seq {
		buf = EncodeString(buf, s)
	}
	return buf
}

// DecodeStringSeq reads a Size-prefixed sequence of strings.
func DecodeStringSeq(buf []byte, pos *int) ([]string, error) {
	n, err := DecodeSize(buf, pos)
	if err != nil {
		return nil, err
	}
	seq := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := DecodeString(buf, pos)
		if err != nil {
			return nil, err
		}
		seq = append(seq, s)
	}
	return seq, nil
}

// EncodeStringMap appends a Size-prefixed map<string,string> in
// iteration order; order is not semantically significant.
func EncodeStringMap(buf []byte, m map[string]string) []byte {
	buf = EncodeSize(buf, len(m))
	for k, v := range m {
		buf = EncodeString(buf, k)
		buf = EncodeString(buf, v)
	}
	return buf
}

// DecodeStringMap reads a Size-prefixed map<string,string>.
func DecodeStringMap(buf []byte, pos *int) (map[string]string, error) {
	n, err := DecodeSize(buf, pos)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, n)
	for i := 0; i < n; i++ {
		k, err := DecodeString(buf, pos)
		if err != nil {
			return nil, err
		}
		v, err := DecodeString(buf, pos)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}
