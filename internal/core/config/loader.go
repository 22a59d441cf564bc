package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// ErrMissingField is wrapped by errors about absent required fields.
var ErrMissingField = errors.New("missing required field")

// document is the on-disk layout. A single network may be written inline
// at the top level instead of under networks.
type document struct {
	Logging  LoggingConfig `yaml:"logging"`
	Networks []Network     `yaml:"networks"`

	Name      string        `yaml:"name"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	Tokens    TokenMap      `yaml:"tokens"`
	Addresses AddressMap    `yaml:"addresses"`
}

func (d *document) inline() bool {
	return d.Name != "" || d.URL != "" || len(d.Tokens) > 0 || len(d.Addresses) > 0
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	return Parse([]byte(expandedData))
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{Logging: doc.Logging, Networks: doc.Networks}

	if doc.inline() {
		if len(doc.Networks) > 0 {
			return nil, fmt.Errorf("failed to parse config file: top-level network fields cannot be combined with networks")
		}
		name := doc.Name
		if name == "" {
			name = DefaultNetworkName
		}
		cfg.Networks = []Network{{
			Name:      name,
			URL:       doc.URL,
			Timeout:   doc.Timeout,
			Tokens:    doc.Tokens,
			Addresses: doc.Addresses,
		}}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	for i := range cfg.Networks {
		if cfg.Networks[i].Timeout == 0 {
			cfg.Networks[i].Timeout = DefaultTimeout
		}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Networks) == 0 {
		return fmt.Errorf("%w: networks", ErrMissingField)
	}

	names := make(map[string]struct{}, len(c.Networks))
	for i, n := range c.Networks {
		if n.Name == "" {
			return fmt.Errorf("network #%d: %w: name", i, ErrMissingField)
		}
		if _, dup := names[n.Name]; dup {
			return fmt.Errorf("duplicate network %q", n.Name)
		}
		names[n.Name] = struct{}{}

		if n.URL == "" {
			return fmt.Errorf("network %q: %w: url", n.Name, ErrMissingField)
		}
		if n.Timeout < 0 {
			return fmt.Errorf("network %q: negative timeout %s", n.Name, n.Timeout)
		}
	}
	return nil
}
