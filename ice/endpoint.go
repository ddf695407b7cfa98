package ice

// Version is a two-byte (major, minor) protocol/encoding version pair.
type Version struct {
	Major uint8
	Minor uint8
}

// EncodeVersion appends major then minor.
func EncodeVersion(buf []byte, v Version) []byte {
	return append(buf, v.Major, v.Minor)
}

// DecodeVersion reads major then minor.
func DecodeVersion(buf []byte, pos *int) (Version, error) {
	major, err := DecodeByte(buf, pos)
	if err != nil {
		return Version{}, err
	}
	minor, err := DecodeByte(buf, pos)
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor}, nil
}

// ProxyData is carried inside locator replies: the fields of a
// resolved object reference other than its endpoint.
type ProxyData struct {
	ID       string
	Facet    []string
	Mode     uint8
	Secure   bool
	Protocol Version
	Encoding Version
}

// EncodeProxyData appends id, facet, mode, secure, protocol, encoding.
func EncodeProxyData(buf []byte, p ProxyData) []byte {
	buf = EncodeString(buf, p.ID)
	buf = EncodeStringSeq(buf, p.Facet)
	buf = EncodeByte(buf, p.Mode)
	buf = EncodeBool(buf, p.Secure)
	buf = EncodeVersion(buf, p.Protocol)
	buf = EncodeVersion(buf, p.Encoding)
	return buf
}

// DecodeProxyData reads a ProxyData.
func DecodeProxyData(buf []byte, pos *int) (ProxyData, error) {
	var p ProxyData
	var err error
	if p.ID, err = DecodeString(buf, pos); err != nil {
		return p, err
	}
	if p.Facet, err = DecodeStringSeq(buf, pos); err != nil {
		return p, err
	}
	if p.Mode, err = DecodeByte(buf, pos); err != nil {
		return p, err
	}
	if p.Secure, err = DecodeBool(buf, pos); err != nil {
		return p, err
	}
	if p.Protocol, err = DecodeVersion(buf, pos); err != nil {
		return p, err
	}
	if p.Encoding, err = DecodeVersion(buf, pos); err != nil {
		return p, err
	}
	return p, nil
}

// EndpointKind discriminates the EndpointType variant.
type EndpointKind uint8

const (
	EndpointTCP EndpointKind = iota
	EndpointSSL
	EndpointWellKnownObject
)

// TCPEndpointData describes a TCP or SSL endpoint's connection
// parameters; both variants share the same shape.
type TCPEndpointData struct {
	Host     string
	Port     int32
	Timeout  int32
	Compress bool
}

// Endpoint is the tagged EndpointType variant: TCP, SSL, or a
// well-known object name that still needs a second locator lookup.
type Endpoint struct {
	Kind          EndpointKind
	TCP           TCPEndpointData // valid when Kind is EndpointTCP or EndpointSSL
	WellKnownName string          // valid when Kind is EndpointWellKnownObject
}

// LocatorResult is the reply body of findObjectById/findAdapterById.
type LocatorResult struct {
	ProxyData ProxyData
	Size      int32
	Endpoint  Endpoint
}

// Synthetic type ids used to carry the EndpointType tagged union over
// the class-slice mechanism: the wire format gives no direct encoding
// for a union of endpoint kinds, so each variant is framed as a
// single-slice class instance the way a generated Slice class with
// one member per kind would be.
const (
	endpointTypeIDTCP       = "::Ice::TcpEndpointType"
	endpointTypeIDSSL       = "::Ice::SslEndpointType"
	endpointTypeIDWellKnown = "::Ice::WellKnownObjectEndpointType"
)

func encodeTCPEndpointData(buf []byte, d TCPEndpointData) []byte {
	buf = EncodeString(buf, d.Host)
	buf = EncodeInt(buf, d.Port)
	buf = EncodeInt(buf, d.Timeout)
	buf = EncodeBool(buf, d.Compress)
	return buf
}

func decodeTCPEndpointData(buf []byte, pos *int) (TCPEndpointData, error) {
	var d TCPEndpointData
	var err error
	if d.Host, err = DecodeString(buf, pos); err != nil {
		return d, err
	}
	if d.Port, err = DecodeInt(buf, pos); err != nil {
		return d, err
	}
	if d.Timeout, err = DecodeInt(buf, pos); err != nil {
		return d, err
	}
	if d.Compress, err = DecodeBool(buf, pos); err != nil {
		return d, err
	}
	return d, nil
}

// EncodeEndpoint appends an Endpoint as a single-slice class instance
// whose type id names the variant.
func EncodeEndpoint(buf []byte, e Endpoint) []byte {
	buf = EncodeClassHead(buf)
	var members []byte
	var typeID string
	switch e.Kind {
	case EndpointTCP:
		typeID = endpointTypeIDTCP
		members = encodeTCPEndpointData(nil, e.TCP)
	case EndpointSSL:
		typeID = endpointTypeIDSSL
		members = encodeTCPEndpointData(nil, e.TCP)
	default:
		typeID = endpointTypeIDWellKnown
		members = EncodeString(nil, e.WellKnownName)
	}
	return EncodeClassSlice(buf, ClassSlice{
		TypeID:      typeID,
		Members:     members,
		IsLastSlice: true,
	})
}

// DecodeEndpoint reads an Endpoint encoded by EncodeEndpoint.
func DecodeEndpoint(buf []byte, pos *int) (Endpoint, error) {
	var e Endpoint
	ok, err := DecodeClassHead(buf, pos)
	if err != nil {
		return e, err
	}
	if !ok {
		return e, newDecodingFault("endpoint: expected class instance marker")
	}
	_, typeID, err := DecodeClassSliceHeader(buf, pos)
	if err != nil {
		return e, err
	}
	switch typeID {
	case endpointTypeIDTCP:
		e.Kind = EndpointTCP
		if e.TCP, err = decodeTCPEndpointData(buf, pos); err != nil {
			return e, err
		}
	case endpointTypeIDSSL:
		e.Kind = EndpointSSL
		if e.TCP, err = decodeTCPEndpointData(buf, pos); err != nil {
			return e, err
		}
	case endpointTypeIDWellKnown:
		e.Kind = EndpointWellKnownObject
		if e.WellKnownName, err = DecodeString(buf, pos); err != nil {
			return e, err
		}
	default:
		return e, NewDecodingFault("endpoint: unknown type id %q", typeID)
	}
	return e, nil
}

// EncodeLocatorResult appends a LocatorResult: proxy data, size (as an
// IceSize varint, unlike an encapsulation's fixed-width size field),
// endpoint.
func EncodeLocatorResult(buf []byte, r LocatorResult) []byte {
	buf = EncodeProxyData(buf, r.ProxyData)
	buf = EncodeSize(buf, int(r.Size))
	buf = EncodeEndpoint(buf, r.Endpoint)
	return buf
}

// DecodeLocatorResult reads a LocatorResult.
func DecodeLocatorResult(buf []byte, pos *int) (LocatorResult, error) {
	var r LocatorResult
	var err error
	if r.ProxyData, err = DecodeProxyData(buf, pos); err != nil {
		return r, err
	}
	size, err := DecodeSize(buf, pos)
	if err != nil {
		return r, err
	}
	r.Size = int32(size)
	if r.Endpoint, err = DecodeEndpoint(buf, pos); err != nil {
		return r, err
	}
	return r, nil
}
