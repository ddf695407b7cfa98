package transport

import (
	"path/filepath"

	"icelink/properties"
)

// TLSConfigFromProperties reads the IceSSL.* keys out of a property bag
// into a TLSConfig. File names are taken relative to IceSSL.DefaultDir
// when one is set and the name is not already absolute.
func TLSConfigFromProperties(p *properties.Properties) TLSConfig {
	defaultDir := p.GetWithDefault("IceSSL.DefaultDir", "")
	resolve := func(name string) string {
		if name == "" || defaultDir == "" || filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(defaultDir, name)
	}

	caFile := p.GetWithDefault("IceSSL.CAs", "")
	if caFile == "" {
		caFile = p.GetWithDefault("IceSSL.CertAuthFile", "")
	}

	return TLSConfig{
		CAFile:     resolve(caFile),
		CertFile:   resolve(p.GetWithDefault("IceSSL.CertFile", "")),
		KeyFile:    resolve(p.GetWithDefault("IceSSL.KeyFile", "")),
		Password:   p.GetWithDefault("IceSSL.Password", ""),
		VerifyPeer: p.GetInt("IceSSL.VerifyPeer", 0),
		MinVersion: p.GetWithDefault("IceSSL.ProtocolVersionMin", ""),
		MaxVersion: p.GetWithDefault("IceSSL.ProtocolVersionMax", ""),
	}
}
