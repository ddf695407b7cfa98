package ice

// EncodeDict appends a Size-prefixed dictionary<K,V> in map iteration
// order; order is not semantically significant per spec.
func EncodeDict[K comparable, V any](buf []byte, m map[K]V, encKey func([]byte, K) []byte, encVal func([]byte, V) []byte) []byte {
	buf = EncodeSize(buf, len(m))
	for k, v := range m {
		buf = encKey(buf, k)
		buf = encVal(buf, v)
	}
	return buf
}

// DecodeDict reads a Size-prefixed dictionary<K,V>, building an
// unordered map.
func DecodeDict[K comparable, V any](buf []byte, pos *int, decKey func([]byte, *int) (K, error), decVal func([]byte, *int) (V, error)) (map[K]V, error) {
	n, err := DecodeSize(buf, pos)
	if err != nil {
		return nil, err
	}
	m := make(map[K]V, n)
	for i := 0; i < n; i++ {
		k, err := decKey(buf, pos)
		if err != nil {
			return nil, err
		}
		v, err := decVal(buf, pos)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}
