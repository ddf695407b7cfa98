package locator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"icelink/ice"
)

func TestParseDirectProxy(t *testing.T) {
	p, err := ParseProxyString("cat/name:tcp -h localhost -p 4061 -t 5000")
	require.NoError(t, err)
	require.True(t, p.Direct)
	require.Equal(t, "cat", p.Identity.Category)
	require.Equal(t, "name", p.Identity.Name)
	require.Equal(t, "tcp", p.Protocol)
	require.Equal(t, "localhost", p.Host)
	require.Equal(t, 4061, p.Port)
	require.Equal(t, 5000, p.Timeout)
}

func TestParseDirectProxyWithoutTimeout(t *testing.T) {
	p, err := ParseProxyString("hello:ssl -h 10.0.0.1 -p 4064")
	require.NoError(t, err)
	require.True(t, p.Direct)
	require.Equal(t, -1, p.Timeout)
}

func TestParseIndirectWithAdapter(t *testing.T) {
	p, err := ParseProxyString("hello@HelloAdapter")
	require.NoError(t, err)
	require.False(t, p.Direct)
	require.Equal(t, "HelloAdapter", p.Adapter)
	require.Equal(t, "hello", p.Identity.Name)
}

func TestParseBareIndirect(t *testing.T) {
	p, err := ParseProxyString("hello")
	require.NoError(t, err)
	require.True(t, p.Indirect())
	require.Equal(t, "", p.Adapter)
}

func TestParseRejectsUnknownProtocol(t *testing.T) {
	_, err := ParseProxyString("hello:carrier-pigeon -h x -p 1")
	require.Error(t, err)
}

func TestParseRejectsMissingHost(t *testing.T) {
	_, err := ParseProxyString("hello:tcp -p 4061")
	require.Error(t, err)
}

// fakeLocator is a scripted ice.Dispatcher that answers
// findObjectById/findAdapterById the way a real locator proxy would.
type fakeLocator struct {
	objectResult  ice.LocatorResult
	adapterResult ice.LocatorResult
	adapterCalls  []string
}

func (f *fakeLocator) Dispatch(operation string, mode uint8, params ice.Encapsulation, context map[string]string) (ice.ReplyData, error) {
	pos := 0
	arg, err := ice.DecodeString(params.Data, &pos)
	if err != nil {
		return ice.ReplyData{}, err
	}

	var result ice.LocatorResult
	switch operation {
	case "findObjectById":
		result = f.objectResult
	case "findAdapterById":
		f.adapterCalls = append(f.adapterCalls, arg)
		result = f.adapterResult
	}
	body := ice.NewEncapsulation(ice.EncodeLocatorResult(nil, result))
	return ice.ReplyData{RequestID: 1, Status: ice.StatusOk, Body: body}, nil
}

func TestResolveDirectAdapterLookup(t *testing.T) {
	fl := &fakeLocator{
		adapterResult: ice.LocatorResult{
			Endpoint: ice.Endpoint{Kind: ice.EndpointTCP, TCP: ice.TCPEndpointData{Host: "10.0.0.9", Port: 4061}},
		},
	}
	p, err := ParseProxyString("hello@HelloAdapter")
	require.NoError(t, err)

	result, err := Resolve(fl, p)
	require.NoError(t, err)
	require.Equal(t, "10.0.0.9", result.Endpoint.TCP.Host)
	require.Equal(t, []string{"HelloAdapter"}, fl.adapterCalls)
}

func TestResolveIndirectWellKnownRecursion(t *testing.T) {
	fl := &fakeLocator{
		objectResult: ice.LocatorResult{
			Endpoint: ice.Endpoint{Kind: ice.EndpointWellKnownObject, WellKnownName: "HelloAdapter"},
		},
		adapterResult: ice.LocatorResult{
			Endpoint: ice.Endpoint{Kind: ice.EndpointTCP, TCP: ice.TCPEndpointData{Host: "10.0.0.9", Port: 4061}},
		},
	}
	p, err := ParseProxyString("hello")
	require.NoError(t, err)

	result, err := Resolve(fl, p)
	require.NoError(t, err)
	require.Equal(t, ice.EndpointTCP, result.Endpoint.Kind)
	require.Equal(t, "10.0.0.9", result.Endpoint.TCP.Host)
	require.Equal(t, []string{"HelloAdapter"}, fl.adapterCalls)
}

func TestResolveIndirectDirectEndpoint(t *testing.T) {
	fl := &fakeLocator{
		objectResult: ice.LocatorResult{
			Endpoint: ice.Endpoint{Kind: ice.EndpointSSL, TCP: ice.TCPEndpointData{Host: "10.0.0.2", Port: 4064}},
		},
	}
	p, err := ParseProxyString("hello")
	require.NoError(t, err)

	result, err := Resolve(fl, p)
	require.NoError(t, err)
	require.Equal(t, ice.EndpointSSL, result.Endpoint.Kind)
	require.Empty(t, fl.adapterCalls)
}
