// Package locator parses Ice proxy strings and resolves indirect
// (name-only) proxies against a locator service.
package locator

import (
	"strconv"
	"strings"

	"icelink/ice"
)

// ParsedProxy is the result of parsing a proxy string: either Direct
// (endpoint fully specified) or indirect, optionally naming an adapter.
type ParsedProxy struct {
	Identity ice.Identity

	Direct bool

	// Direct fields.
	Protocol string // "tcp", "ssl", or "default"
	Host     string
	Port     int
	Timeout  int // milliseconds; -1 if not given

	// Indirect fields.
	Adapter string // set when the string used the "ident @ adapter" form
}

// ParseProxyString parses the proxy string grammar:
//
//	proxy      = ident [ ':' endpoint ] | ident '@' ident
//	endpoint   = ('tcp' | 'ssl' | 'default') ('-h' host) ('-p' port) [ '-t' ms ]
//	ident      = [category '/'] name
func ParseProxyString(s string) (ParsedProxy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ParsedProxy{}, ice.NewParsingFault("proxy string: empty")
	}

	idx := strings.IndexAny(s, ":@")
	if idx == -1 {
		return ParsedProxy{Identity: ice.NewIdentity(strings.TrimSpace(s))}, nil
	}

	identPart := strings.TrimSpace(s[:idx])
	if identPart == "" {
		return ParsedProxy{}, ice.NewParsingFault("proxy string %q: empty identity", s)
	}
	ident := ice.NewIdentity(identPart)
	rest := strings.TrimSpace(s[idx+1:])

	if s[idx] == '@' {
		if rest == "" {
			return ParsedProxy{}, ice.NewParsingFault("proxy string %q: empty adapter name", s)
		}
		return ParsedProxy{Identity: ident, Adapter: rest}, nil
	}

	return parseEndpoint(ident, rest, s)
}

func parseEndpoint(ident ice.Identity, rest, original string) (ParsedProxy, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ParsedProxy{}, ice.NewParsingFault("proxy string %q: missing endpoint protocol", original)
	}

	protocol := strings.ToLower(fields[0])
	switch protocol {
	case "tcp", "ssl", "default":
	default:
		return ParsedProxy{}, ice.NewParsingFault("proxy string %q: unknown endpoint protocol %q", original, fields[0])
	}

	p := ParsedProxy{Identity: ident, Direct: true, Protocol: protocol, Timeout: -1}

	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "-h":
			if i+1 >= len(fields) {
				return ParsedProxy{}, ice.NewParsingFault("proxy string %q: -h without a host", original)
			}
			p.Host = fields[i+1]
			i++
		case "-p":
			if i+1 >= len(fields) {
				return ParsedProxy{}, ice.NewParsingFault("proxy string %q: -p without a port", original)
			}
			port, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return ParsedProxy{}, ice.NewParsingFault("proxy string %q: invalid port %q", original, fields[i+1])
			}
			p.Port = port
			i++
		case "-t":
			if i+1 >= len(fields) {
				return ParsedProxy{}, ice.NewParsingFault("proxy string %q: -t without a value", original)
			}
			ms, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return ParsedProxy{}, ice.NewParsingFault("proxy string %q: invalid timeout %q", original, fields[i+1])
			}
			p.Timeout = ms
			i++
		default:
			return ParsedProxy{}, ice.NewParsingFault("proxy string %q: unexpected token %q", original, fields[i])
		}
	}

	if p.Host == "" {
		return ParsedProxy{}, ice.NewParsingFault("proxy string %q: missing -h host", original)
	}
	return p, nil
}

// Indirect reports whether the parsed proxy has no direct endpoint.
func (p ParsedProxy) Indirect() bool { return !p.Direct }
