package ice

// Reply status codes.
const (
	StatusOk                    uint8 = 0
	StatusUserException         uint8 = 1
	StatusUnknownLocalException uint8 = 7
)

// ReplyData is the body of a Reply message. A status-7
// (UnknownLocalException) reply carries a bare UTF-8 cause string in
// the body position instead of an encapsulation; Cause holds it and
// Body stays empty.
type ReplyData struct {
	RequestID int32
	Status    uint8
	Body      Encapsulation
	Cause     string
}

// EncodeReplyData appends request_id, status, and either the bare
// cause string (status 7) or the body encapsulation.
func EncodeReplyData(buf []byte, r ReplyData) []byte {
	buf = EncodeInt(buf, r.RequestID)
	buf = EncodeByte(buf, r.Status)
	if r.Status == StatusUnknownLocalException {
		return EncodeString(buf, r.Cause)
	}
	buf = EncodeEncapsulation(buf, r.Body)
	return buf
}

// DecodeReplyData reads a ReplyData, branching on status for the
// status-7 bare-string body.
func DecodeReplyData(buf []byte, pos *int) (ReplyData, error) {
	var r ReplyData
	var err error
	if r.RequestID, err = DecodeInt(buf, pos); err != nil {
		return r, err
	}
	if r.Status, err = DecodeByte(buf, pos); err != nil {
		return r, err
	}
	if r.Status == StatusUnknownLocalException {
		r.Cause, err = DecodeString(buf, pos)
		return r, err
	}
	if r.Body, err = DecodeEncapsulation(buf, pos); err != nil {
		return r, err
	}
	return r, nil
}
