package proxy

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"icelink/ice"
	"icelink/properties"
	"icelink/server"
	"icelink/transport"
)

// startAdapter listens on a loopback TCP port with one registered
// servant and returns the bound host and port.
func startAdapter(t *testing.T, ident string, typeIDs []string) (string, int) {
	t.Helper()

	a := server.NewAdapter("TestAdapter")
	a.Add(ice.NewIdentity(ident), server.Servant{
		Handler: noopServant{},
		TypeIDs: typeIDs,
	})

	l, err := transport.ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	go a.Serve(l)
	t.Cleanup(a.Close)

	addr := l.Addr()
	i := strings.LastIndexByte(addr, ':')
	port, err := strconv.Atoi(addr[i+1:])
	require.NoError(t, err)
	return addr[:i], port
}

type noopServant struct{}

func (noopServant) Dispatch(operation string, mode uint8, params ice.Encapsulation, context map[string]string) (ice.ReplyData, error) {
	return ice.ReplyData{Status: ice.StatusOk, Body: ice.EmptyEncapsulation()}, nil
}

func TestNewFromStringDirect(t *testing.T) {
	host, port := startAdapter(t, "hello", []string{"::Demo::Hello"})

	comm := properties.NewCommunicator(properties.New())
	s := "hello:tcp -h " + host + " -p " + strconv.Itoa(port)
	p, err := NewFromString(context.Background(), comm, s, WithDeadline(2*time.Second))
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.IcePing())

	id, err := p.IceID()
	require.NoError(t, err)
	require.Equal(t, "::Demo::Hello", id)
}

func TestNewFromStringIndirectWithoutLocator(t *testing.T) {
	comm := properties.NewCommunicator(properties.New())
	_, err := NewFromString(context.Background(), comm, "hello")
	require.Error(t, err)
	var f *ice.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, ice.PropertyFault, f.Kind)
}

// redirectLocator answers findObjectById with a well-known object so
// the resolver has to recurse into findAdapterById, whose answer points
// at the live test adapter.
type redirectLocator struct {
	host         string
	port         int
	adapterCalls []string
}

func (l *redirectLocator) Dispatch(operation string, mode uint8, params ice.Encapsulation, context map[string]string) (ice.ReplyData, error) {
	var result ice.LocatorResult
	switch operation {
	case "findObjectById":
		result.Endpoint = ice.Endpoint{Kind: ice.EndpointWellKnownObject, WellKnownName: "HelloAdapter"}
	case "findAdapterById":
		pos := 0
		arg, err := ice.DecodeString(params.Data, &pos)
		if err != nil {
			return ice.ReplyData{}, err
		}
		l.adapterCalls = append(l.adapterCalls, arg)
		result.Endpoint = ice.Endpoint{
			Kind: ice.EndpointTCP,
			TCP:  ice.TCPEndpointData{Host: l.host, Port: int32(l.port), Timeout: -1},
		}
	default:
		return ice.ReplyData{}, ice.NewProtocolFault("unknown operation %s", operation)
	}
	body := ice.NewEncapsulation(ice.EncodeLocatorResult(nil, result))
	return ice.ReplyData{Status: ice.StatusOk, Body: body}, nil
}

func TestNewFromStringIndirectResolvesThroughLocator(t *testing.T) {
	host, port := startAdapter(t, "hello", []string{"::Demo::Hello"})

	comm := properties.NewCommunicator(properties.New())
	fl := &redirectLocator{host: host, port: port}
	comm.DefaultLocator = fl

	p, err := NewFromString(context.Background(), comm, "hello", WithDeadline(2*time.Second))
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, []string{"HelloAdapter"}, fl.adapterCalls)
	require.NoError(t, p.IcePing())
}

func TestConnectDefaultLocatorRequiresProperty(t *testing.T) {
	comm := properties.NewCommunicator(properties.New())
	err := ConnectDefaultLocator(context.Background(), comm)
	require.Error(t, err)
	var f *ice.Fault
	require.ErrorAs(t, err, &f)
	require.Equal(t, ice.PropertyFault, f.Kind)
}

func TestConnectDefaultLocatorDialsDirectEndpoint(t *testing.T) {
	host, port := startAdapter(t, "IceGrid/Locator", []string{"::Ice::Locator"})

	props := properties.New()
	props.Set("Ice.Default.Locator", "IceGrid/Locator:tcp -h "+host+" -p "+strconv.Itoa(port))
	comm := properties.NewCommunicator(props)

	require.NoError(t, ConnectDefaultLocator(context.Background(), comm, WithDeadline(2*time.Second)))
	require.NotNil(t, comm.DefaultLocator)

	lp, ok := comm.DefaultLocator.(*Proxy)
	require.True(t, ok)
	require.NoError(t, lp.IcePing())
	lp.Close()
}
