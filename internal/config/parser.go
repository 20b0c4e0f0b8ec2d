package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes YAML content over the defaults. Unknown keys are errors.
// Empty content yields the defaults.
func Parse(content []byte) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	expandEnvConfig(&cfg)
	return &cfg, nil
}

// ParseFile reads and parses a configuration file.
func ParseFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(content)
}

// Load builds the effective configuration: defaults, then the file at path
// when path is not empty, then environment overrides. The result is
// validated.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path == "" {
		d := Defaults()
		cfg = &d
	} else if cfg, err = ParseFile(path); err != nil {
		return nil, err
	}

	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := Validate(cfg).Error(); err != nil {
		return nil, err
	}
	return cfg, nil
}
