// Package admin exposes a small introspection HTTP API over the proxies
// a process currently holds open.
package admin

import (
	"sync"
	"time"

	"icelink/ice"
	"icelink/proxy"
)

// Entry describes one registered proxy's identity and connection state
// at the moment it was last observed.
type Entry struct {
	Name      string
	Identity  ice.Identity
	Endpoint  string
	Connected bool
	LastError string
	UpdatedAt time.Time
}

// Registry tracks the set of proxies a process wants to expose for
// introspection, keyed by an arbitrary caller-chosen name.
type Registry struct {
	mu      sync.RWMutex
	proxies map[string]*proxy.Proxy
	errors  map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		proxies: make(map[string]*proxy.Proxy),
		errors:  make(map[string]string),
	}
}

// Register adds or replaces the proxy known under name.
func (r *Registry) Register(name string, p *proxy.Proxy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proxies[name] = p
	delete(r.errors, name)
}

// RecordError remembers the last dispatch error seen for name without
// removing it from the registry, so a failing connection still shows
// up in the listing.
func (r *Registry) RecordError(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.errors, name)
		return
	}
	r.errors[name] = err.Error()
}

// Remove drops name from the registry.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.proxies, name)
	delete(r.errors, name)
}

// List returns a snapshot of every registered proxy.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.proxies))
	for name, p := range r.proxies {
		out = append(out, Entry{
			Name:      name,
			Identity:  p.Identity(),
			Endpoint:  p.Tag(),
			Connected: r.errors[name] == "",
			LastError: r.errors[name],
			UpdatedAt: time.Now(),
		})
	}
	return out
}

// Get returns the named proxy, or false if it isn't registered.
func (r *Registry) Get(name string) (*proxy.Proxy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.proxies[name]
	return p, ok
}
