package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"rtedit/internal/schema"
)

// Config holds configuration options for the editing engine
type Config struct {
	// MaxListDepth is the deepest list nesting indent will produce
	MaxListDepth int `yaml:"max_list_depth"`

	// DefaultBlock is the block tag toggled back to when a block change is
	// applied to blocks that already have the requested type
	DefaultBlock string `yaml:"default_block"`

	// RootSelector picks the editable root inside a parsed document
	RootSelector string `yaml:"root_selector"`

	// Logging configures the console logger
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		MaxListDepth: 5,
		DefaultBlock: "p",
		RootSelector: "body",
		Logging:      LoggingConfig{Level: "normal"},
	}
}

// Load reads a YAML file on top of the defaults and validates the result. An
// empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if len(path) == 0 {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data on top of the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()

	// unknown keys are almost always typos
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.DefaultBlock = schema.Normalize(cfg.DefaultBlock)
	return cfg, nil
}

// Validate reports every problem with the configuration at once
func (c Config) Validate() error {
	var err error
	if c.MaxListDepth < 1 {
		err = multierr.Append(err, fmt.Errorf("max_list_depth must be at least 1, got %d", c.MaxListDepth))
	}
	if !schema.RolesOf(c.DefaultBlock).Has(schema.FirstLevel) {
		err = multierr.Append(err, fmt.Errorf("default_block %q is not a paragraph or heading tag", c.DefaultBlock))
	}
	if strings.TrimSpace(c.RootSelector) == "" {
		err = multierr.Append(err, fmt.Errorf("root_selector must not be empty"))
	}
	if lerr := c.Logging.Validate(); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}

// Dump renders the configuration as YAML
func Dump(c Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}
