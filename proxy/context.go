package proxy

import "context"

// IceContext produces a new Proxy sharing this one's connection
// semantics (dialer, host, port, identity, facet, deadline, poll
// interval) but with ctx as its default context — implemented by
// re-resolving the original endpoint: dialing a fresh connection
// rather than mutating this one.
func (p *Proxy) IceContext(dialCtx context.Context, ctx map[string]string) (*Proxy, error) {
	return NewProxy(dialCtx, p.dialer, p.host, p.port, p.identity,
		WithDefaultContext(ctx),
		WithFacet(p.facet),
		WithDeadline(p.deadline),
		WithPollInterval(p.pollInterval),
	)
}
