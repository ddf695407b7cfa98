package properties

import "icelink/ice"

// Communicator threads a property bag and an optional default locator
// through proxy construction as an explicit value rather than a
// process-wide singleton, so multiple communicators with disjoint
// configuration can coexist in one process.
//
// DefaultLocator is an ice.Dispatcher rather than a concrete proxy type
// so this package never imports the connection engine: callers build the
// locator proxy themselves (it is itself just a Proxy dialed against
// Ice.Default.Locator) and assign it here.
type Communicator struct {
	Properties     *Properties
	DefaultLocator ice.Dispatcher
}

// NewCommunicator wraps an already-loaded property bag.
func NewCommunicator(props *Properties) *Communicator {
	return &Communicator{Properties: props}
}

// DefaultLocatorProxyString returns the Ice.Default.Locator property, if set.
func (c *Communicator) DefaultLocatorProxyString() (string, bool) {
	return c.Properties.Get("Ice.Default.Locator")
}
