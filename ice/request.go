package ice

// Request delivery modes.
const (
	ModeNormal     uint8 = 0
	ModeIdempotent uint8 = 1
)

// RequestData is the body of a Request message: everything the
// connection engine needs to route and the target object needs to
// invoke the call.
type RequestData struct {
	RequestID int32
	ID        Identity
	Facet     []string
	Operation string
	Mode      uint8
	Context   map[string]string
	Params    Encapsulation
}

// EncodeRequestData appends a RequestData field by field, in
// declaration order.
func EncodeRequestData(buf []byte, r RequestData) []byte {
	buf = EncodeInt(buf, r.RequestID)
	buf = EncodeIdentity(buf, r.ID)
	buf = EncodeStringSeq(buf, r.Facet)
	buf = EncodeString(buf, r.Operation)
	buf = EncodeByte(buf, r.Mode)
	buf = EncodeStringMap(buf, r.Context)
	buf = EncodeEncapsulation(buf, r.Params)
	return buf
}

// DecodeRequestData reads a RequestData.
func DecodeRequestData(buf []byte, pos *int) (RequestData, error) {
	var r RequestData
	var err error
	if r.RequestID, err = DecodeInt(buf, pos); err != nil {
		return r, err
	}
	if r.ID, err = DecodeIdentity(buf, pos); err != nil {
		return r, err
	}
	if r.Facet, err = DecodeStringSeq(buf, pos); err != nil {
		return r, err
	}
	if r.Operation, err = DecodeString(buf, pos); err != nil {
		return r, err
	}
	if r.Mode, err = DecodeByte(buf, pos); err != nil {
		return r, err
	}
	if r.Context, err = DecodeStringMap(buf, pos); err != nil {
		return r, err
	}
	if r.Params, err = DecodeEncapsulation(buf, pos); err != nil {
		return r, err
	}
	return r, nil
}
