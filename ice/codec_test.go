package ice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeBoundaries(t *testing.T) {
	cases := []struct {
		n    int
		want []byte
	}{
		{10, []byte{10}},
		{254, []byte{254}},
		{500, []byte{255, 244, 1, 0, 0}},
	}
	for _, tc := range cases {
		buf := EncodeSize(nil, tc.n)
		require.Equal(t, tc.want, buf)

		pos := 0
		got, err := DecodeSize(buf, &pos)
		require.NoError(t, err)
		require.Equal(t, tc.n, got)
		require.Equal(t, len(tc.want), pos)
	}
}

func TestStringRoundtrip(t *testing.T) {
	buf := EncodeString(nil, "Hello")
	require.Equal(t, []byte{5, 'H', 'e', 'l', 'l', 'o'}, buf)

	pos := 0
	s, err := DecodeString(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, "Hello", s)
	require.Equal(t, 6, pos)
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	buf := []byte{2, 0xff, 0xfe}
	pos := 0
	_, err := DecodeString(buf, &pos)
	require.Error(t, err)
	var f *Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, DecodingFault, f.Kind)
}

func TestPrimitiveRoundtrip(t *testing.T) {
	buf := EncodeBool(nil, true)
	buf = EncodeByte(buf, 0x7f)
	buf = EncodeShort(buf, -1234)
	buf = EncodeInt(buf, -123456)
	buf = EncodeLong(buf, -123456789012345)
	buf = EncodeFloat(buf, 3.5)
	buf = EncodeDouble(buf, -2.25)

	pos := 0
	b, err := DecodeBool(buf, &pos)
	require.NoError(t, err)
	require.True(t, b)

	by, err := DecodeByte(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, byte(0x7f), by)

	sh, err := DecodeShort(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, int16(-1234), sh)

	i, err := DecodeInt(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, int32(-123456), i)

	l, err := DecodeLong(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, int64(-123456789012345), l)

	f, err := DecodeFloat(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, float32(3.5), f)

	d, err := DecodeDouble(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, -2.25, d)

	require.Equal(t, len(buf), pos)
}

func TestSequenceAndDictRoundtrip(t *testing.T) {
	seq := []int32{1, 2, 3}
	buf := EncodeSeq(nil, seq, EncodeInt)
	pos := 0
	got, err := DecodeSeq(buf, &pos, DecodeInt)
	require.NoError(t, err)
	require.Equal(t, seq, got)
	require.Equal(t, len(buf), pos)

	m := map[string]int32{"a": 1, "b": 2}
	buf = EncodeDict(nil, m, EncodeString, EncodeInt)
	pos = 0
	gotMap, err := DecodeDict(buf, &pos, DecodeString, DecodeInt)
	require.NoError(t, err)
	require.Equal(t, m, gotMap)
}

func TestOptionalSkipping(t *testing.T) {
	// member tag 1 (known, byte4), then tag 2 (unknown, size-prefixed
	// string "skip me"), then tag 3 (known, byte1), then terminator.
	var buf []byte
	buf = EncodeOptionalFlag(buf, 1, OptionalTypeByte4)
	buf = EncodeInt(buf, 42)
	buf = EncodeOptionalFlag(buf, 2, OptionalTypeSize)
	buf = EncodeString(buf, "skip me")
	buf = EncodeOptionalFlag(buf, 3, OptionalTypeByte1)
	buf = EncodeByte(buf, 9)
	buf = append(buf, optionalEndMarker)

	var gotTag1 int32
	var gotTag3 byte
	handlers := map[uint8]OptionalMemberHandler{
		1: func(b []byte, pos *int, typ uint8) error {
			v, err := DecodeInt(b, pos)
			gotTag1 = v
			return err
		},
		3: func(b []byte, pos *int, typ uint8) error {
			v, err := DecodeByte(b, pos)
			gotTag3 = v
			return err
		},
	}
	pos := 0
	err := DecodeOptionalMembers(buf, &pos, handlers)
	require.NoError(t, err)
	require.Equal(t, int32(42), gotTag1)
	require.Equal(t, byte(9), gotTag3)
	require.Equal(t, len(buf), pos)
}

func TestEnumRejectsOutOfRange(t *testing.T) {
	buf := EncodeEnum(nil, 5)
	pos := 0
	_, err := DecodeEnum(buf, &pos, func(n int) bool { return n >= 0 && n <= 2 })
	require.Error(t, err)
}

func TestHeaderRoundtrip(t *testing.T) {
	h := NewHeader(MsgValidateConnection, HeaderSize)
	buf := EncodeHeader(nil, h)
	require.Len(t, buf, HeaderSize)
	require.Equal(t, []byte("IceP"), buf[:4])
	require.Equal(t, []byte{1, 0, 1, 0}, buf[4:8])

	pos := 0
	got, err := DecodeHeader(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, HeaderSize, pos)
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	buf := EncodeHeader(nil, NewHeader(MsgCloseConnection, HeaderSize))
	buf[0] = 'X'
	pos := 0
	_, err := DecodeHeader(buf, &pos)
	require.Error(t, err)
	var f *Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, ProtocolFault, f.Kind)
}

func TestEmptyRequestIsTwentyTwoBytes(t *testing.T) {
	req := RequestData{
		RequestID: 1,
		ID:        Identity{Name: "Test"},
		Facet:     []string{},
		Operation: "Op",
		Mode:      ModeNormal,
		Context:   map[string]string{},
		Params:    EmptyEncapsulation(),
	}
	buf := EncodeRequestData(nil, req)
	require.Len(t, buf, 22)

	pos := 0
	got, err := DecodeRequestData(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestEmptyReplyIsElevenBytes(t *testing.T) {
	reply := ReplyData{RequestID: 1, Status: StatusOk, Body: EmptyEncapsulation()}
	buf := EncodeReplyData(nil, reply)
	require.Len(t, buf, 11)

	pos := 0
	got, err := DecodeReplyData(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, reply, got)
}

func TestStatus7ReplyCarriesBareCause(t *testing.T) {
	reply := ReplyData{RequestID: 2, Status: StatusUnknownLocalException, Cause: "boom"}
	buf := EncodeReplyData(nil, reply)
	// 4 (request id) + 1 (status) + 5 (bare string, no encapsulation).
	require.Len(t, buf, 10)

	pos := 0
	got, err := DecodeReplyData(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, reply, got)
	require.Equal(t, len(buf), pos)
}

func TestEncapsulationRoundtrip(t *testing.T) {
	e := NewEncapsulation([]byte{1, 2, 3})
	buf := EncodeEncapsulation(nil, e)
	pos := 0
	got, err := DecodeEncapsulation(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, e, got)
	require.Equal(t, len(buf), pos)
}

func TestEndpointRoundtrip(t *testing.T) {
	tcp := Endpoint{Kind: EndpointTCP, TCP: TCPEndpointData{Host: "localhost", Port: 4061, Timeout: -1, Compress: false}}
	buf := EncodeEndpoint(nil, tcp)
	pos := 0
	got, err := DecodeEndpoint(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, tcp, got)
	require.Equal(t, len(buf), pos)

	wk := Endpoint{Kind: EndpointWellKnownObject, WellKnownName: "RegistryAdapter"}
	buf = EncodeEndpoint(nil, wk)
	pos = 0
	got, err = DecodeEndpoint(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, wk, got)
}

func TestLocatorResultRoundtrip(t *testing.T) {
	r := LocatorResult{
		ProxyData: ProxyData{ID: "hello", Facet: []string{}, Protocol: Version{1, 0}, Encoding: Version{1, 1}},
		Size:      1,
		Endpoint:  Endpoint{Kind: EndpointSSL, TCP: TCPEndpointData{Host: "10.0.0.5", Port: 4064}},
	}
	buf := EncodeLocatorResult(nil, r)
	pos := 0
	got, err := DecodeLocatorResult(buf, &pos)
	require.NoError(t, err)
	require.Equal(t, r, got)
	require.Equal(t, len(buf), pos)
}

// TestLocatorResultSizeIsVarint pins the size field's width: one byte
// below 255, five bytes after, unlike an encapsulation's fixed i32.
func TestLocatorResultSizeIsVarint(t *testing.T) {
	wk := Endpoint{Kind: EndpointWellKnownObject, WellKnownName: "A"}
	small := EncodeLocatorResult(nil, LocatorResult{Size: 1, Endpoint: wk})
	large := EncodeLocatorResult(nil, LocatorResult{Size: 500, Endpoint: wk})
	require.Len(t, large, len(small)+4)

	pos := 0
	got, err := DecodeLocatorResult(large, &pos)
	require.NoError(t, err)
	require.Equal(t, int32(500), got.Size)
	require.Len(t, large, pos)
}

func TestIdentityStringForm(t *testing.T) {
	id := NewIdentity("cat/name")
	require.Equal(t, "cat", id.Category)
	require.Equal(t, "name", id.Name)
	require.Equal(t, "cat/name", id.String())

	bare := NewIdentity("name")
	require.Equal(t, "", bare.Category)
	require.Equal(t, "name", bare.String())
}
