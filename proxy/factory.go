package proxy

import (
	"context"
	"time"

	"icelink/ice"
	"icelink/locator"
	"icelink/logging"
	"icelink/properties"
	"icelink/transport"
)

// NewFromString turns a proxy string into a live Proxy. Direct strings
// ("ident:tcp -h host -p port") dial the named endpoint; indirect
// strings ("ident" or "ident@adapter") are resolved through the
// communicator's default locator first and the returned endpoint is
// dialed instead.
func NewFromString(ctx context.Context, comm *properties.Communicator, s string, opts ...Option) (*Proxy, error) {
	parsed, err := locator.ParseProxyString(s)
	if err != nil {
		return nil, err
	}

	if parsed.Direct {
		dialer := dialerFor(comm, parsed.Protocol, parsed.Timeout)
		return NewProxy(ctx, dialer, parsed.Host, parsed.Port, parsed.Identity, opts...)
	}

	if comm.DefaultLocator == nil {
		return nil, ice.NewPropertyFault("Ice.Default.Locator")
	}
	result, err := locator.Resolve(comm.DefaultLocator, parsed)
	if err != nil {
		return nil, err
	}

	logging.DebugLog(logging.SubsystemLocator, "resolved %q to kind=%d host=%s port=%d",
		s, result.Endpoint.Kind, result.Endpoint.TCP.Host, result.Endpoint.TCP.Port)

	switch result.Endpoint.Kind {
	case ice.EndpointTCP:
		dialer := dialerFor(comm, "tcp", int(result.Endpoint.TCP.Timeout))
		return NewProxy(ctx, dialer, result.Endpoint.TCP.Host, int(result.Endpoint.TCP.Port), parsed.Identity, opts...)
	case ice.EndpointSSL:
		dialer := dialerFor(comm, "ssl", int(result.Endpoint.TCP.Timeout))
		return NewProxy(ctx, dialer, result.Endpoint.TCP.Host, int(result.Endpoint.TCP.Port), parsed.Identity, opts...)
	default:
		return nil, ice.NewProtocolFault("locator left %q unresolved (well-known object after adapter lookup)", s)
	}
}

// ConnectDefaultLocator dials the proxy named by Ice.Default.Locator
// and installs it on the communicator, so subsequent indirect proxy
// strings can resolve. The locator string itself must be direct.
func ConnectDefaultLocator(ctx context.Context, comm *properties.Communicator, opts ...Option) error {
	s, ok := comm.DefaultLocatorProxyString()
	if !ok {
		return ice.NewPropertyFault("Ice.Default.Locator")
	}
	parsed, err := locator.ParseProxyString(s)
	if err != nil {
		return err
	}
	if !parsed.Direct {
		return ice.NewParsingFault("Ice.Default.Locator %q must name a direct endpoint", s)
	}

	dialer := dialerFor(comm, parsed.Protocol, parsed.Timeout)
	p, err := NewProxy(ctx, dialer, parsed.Host, parsed.Port, parsed.Identity, opts...)
	if err != nil {
		return err
	}
	comm.DefaultLocator = p
	return nil
}

// dialerFor picks the transport for an endpoint protocol. "default"
// means tcp; "ssl" reads the IceSSL.* properties off the communicator.
func dialerFor(comm *properties.Communicator, protocol string, timeoutMillis int) transport.Dialer {
	var connectTimeout time.Duration
	if timeoutMillis > 0 {
		connectTimeout = time.Duration(timeoutMillis) * time.Millisecond
	}
	if protocol == "ssl" {
		return transport.TLSDialer{
			ConnectTimeout: connectTimeout,
			Config:         transport.TLSConfigFromProperties(comm.Properties),
		}
	}
	return transport.TCPDialer{ConnectTimeout: connectTimeout}
}
