package proxy

import "icelink/ice"

// The built-in operations every Ice object exposes are just
// ice.Dispatcher calls against this Proxy; ice/object.go already
// implements the marshalling, so these methods exist only to satisfy
// ice.Object.

func (p *Proxy) IcePing() error                     { return ice.Ping(p) }
func (p *Proxy) IceIsA(typeID string) (bool, error) { return ice.IsA(p, typeID) }
func (p *Proxy) IceID() (string, error)             { return ice.ID(p) }
func (p *Proxy) IceIDs() ([]string, error)          { return ice.IDs(p) }

var _ ice.Object = (*Proxy)(nil)
