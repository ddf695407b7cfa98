package slicegen

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest records, per source .ice file, which generated Go files it
// last produced and when, so a build can skip re-generating files whose
// source hasn't changed since.
type Manifest struct {
	Version int                     `yaml:"version"`
	Sources map[string]SourceRecord `yaml:"sources"`
}

// SourceRecord is one .ice file's last-generated state.
type SourceRecord struct {
	Checksum    string    `yaml:"checksum"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Outputs     []string  `yaml:"outputs"`
}

const manifestVersion = 1

// LoadManifest reads a manifest from path, returning a fresh empty one
// if the file doesn't exist yet.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{Version: manifestVersion, Sources: make(map[string]SourceRecord)}, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Sources == nil {
		m.Sources = make(map[string]SourceRecord)
	}
	return &m, nil
}

// Save writes m to path as YAML.
func (m *Manifest) Save(path string) error {
	m.Version = manifestVersion
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NeedsRegeneration reports whether sourcePath's current checksum
// differs from what's recorded, meaning its outputs are stale.
func (m *Manifest) NeedsRegeneration(sourcePath, checksum string) bool {
	rec, ok := m.Sources[sourcePath]
	if !ok {
		return true
	}
	return rec.Checksum != checksum
}

// Record updates sourcePath's entry after a successful generation.
func (m *Manifest) Record(sourcePath, checksum string, outputs []string, generatedAt time.Time) {
	m.Sources[sourcePath] = SourceRecord{
		Checksum:    checksum,
		GeneratedAt: generatedAt,
		Outputs:     outputs,
	}
}
