// Package properties implements the flat Key=Value configuration bag
// Ice-style config files use: comments and blank lines ignored, every
// other line split on the first '=' into a key and a value.
package properties

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"icelink/ice"
)

// Properties is a mutex-guarded string-to-string bag, safe for
// concurrent reads from multiple communicators sharing a loaded file.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

// New returns an empty property bag.
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Load reads Key=Value lines from path into a new Properties, skipping
// blank lines and lines whose first non-blank character is '#'.
func Load(path string) (*Properties, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("properties: open %s: %w", path, err)
	}
	defer file.Close()

	p := New()
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, fmt.Errorf("properties: %s:%d: missing '=' in %q", path, lineNo, line)
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" {
			return nil, fmt.Errorf("properties: %s:%d: empty key", path, lineNo)
		}
		p.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("properties: read %s: %w", path, err)
	}
	return p, nil
}

// Get returns the value for key and whether it was present.
func (p *Properties) Get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// GetWithDefault returns the value for key, or def if absent.
func (p *Properties) GetWithDefault(key, def string) string {
	if v, ok := p.Get(key); ok {
		return v
	}
	return def
}

// GetInt parses the value for key as an integer, or returns def if the
// key is absent or not a valid integer.
func (p *Properties) GetInt(key string, def int) int {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Has reports whether key is set.
func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Require returns the value for key or a PropertyFault if it is unset.
func (p *Properties) Require(key string) (string, error) {
	v, ok := p.Get(key)
	if !ok {
		return "", ice.NewPropertyFault(key)
	}
	return v, nil
}

// Set assigns key=value, overwriting any prior value.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}
