/*
File Name:  config.go
Copyright:  2021 Peernet Foundation s.r.o.
Author:     Peter Kleissner

Config is the YAML-backed node configuration, grounded on the reference
Settings.go loader: a private key hex string, log file path, listening/external
address, optional TLS material, and an initial peer seed list. config_default.yaml
embeds the fallback used when no file is supplied.
*/

package core

import (
	_ "embed"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

//go:embed config_default.yaml
var configDefault []byte

// Config is the node's persisted configuration.
type Config struct {
	// PrivateKey is the node's signing key, hex encoded so it can be copied
	// manually. If empty, New generates a key in memory; it is written to disk
	// only if the caller saves the config with SaveConfig.
	PrivateKey string `yaml:"PrivateKey"`

	// LogFile is the path informational and error messages are appended to.
	// No log file is written if empty; writers added with Node.SubscribeLog
	// still receive the log.
	LogFile string `yaml:"LogFile"`

	// Port is the local wschannel.Server listen port. 0 disables the listener.
	Port int `yaml:"Port"`

	// ExternalHost/ExternalPort are this node's externally reachable address,
	// advertised to peers attempting a direct connection. ExternalHost empty
	// means this node cannot be dialed directly.
	ExternalHost string `yaml:"ExternalHost"`
	ExternalPort int    `yaml:"ExternalPort"`

	// TLSPemCertificate/TLSPemKey enable wss:// on the listener if both are set.
	TLSPemCertificate string `yaml:"TLSPemCertificate"`
	TLSPemKey         string `yaml:"TLSPemKey"`

	// DummyTLSService is a TLS service host name (default legio-p2p.net). It is
	// only carried in the configuration; the listener does not read it.
	DummyTLSService string `yaml:"DummyTLSService"`

	// SeedList is the set of known peers to attempt connecting to on startup.
	SeedList []peerSeed `yaml:"SeedList"`
}

// peerSeed is a single bootstrap peer entry.
type peerSeed struct {
	PublicKey string   `yaml:"PublicKey"` // Identifier, base64url encoded.
	Address   []string `yaml:"Address"`   // ws:// or wss:// URLs.
}

// defaultConfig returns the built-in fallback configuration.
func defaultConfig() (Config, error) {
	var cfg Config
	cfg.DummyTLSService = "legio-p2p.net"
	if err := yaml.Unmarshal(configDefault, &cfg); err != nil {
		return Config{}, ErrConfig
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file. A missing or invalid path falls
// back to the embedded default.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return defaultConfig()
	}

	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return defaultConfig()
	}

	cfg, err := defaultConfig()
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, ErrConfig
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}
