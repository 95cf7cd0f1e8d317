// Package config loads server runtime configuration: the listen address
// and the storage root, with an environment-variable override layered on
// top of an optional config.yaml (§4.1, §7).
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddress = "0.0.0.0:2794"
	configFileName = "config.yaml"
)

// Config holds everything the server needs to start.
type Config struct {
	Address string `yaml:"address"`
	Dir     string `yaml:"dir"`
}

// Load reads config.yaml next to the executable (or in the working
// directory, for `go run`) if present, then applies S6_HCS_ADDRESS and
// S6_HCS_DIR environment overrides on top, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{Address: defaultAddress}

	if path, ok := defaultConfigPath(); ok {
		if err := cfg.mergeYAML(path); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if v, ok := os.LookupEnv("S6_HCS_ADDRESS"); ok && strings.TrimSpace(v) != "" {
		cfg.Address = v
	}
	if v, ok := os.LookupEnv("S6_HCS_DIR"); ok && strings.TrimSpace(v) != "" {
		cfg.Dir = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return err
	}
	c.resolvePaths(path)
	return nil
}

// Validate enforces the required fields (§7): a storage root is mandatory,
// the listen address is never empty.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("config: address is required")
	}
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("config: dir is required (set S6_HCS_DIR or config.yaml dir:)")
	}
	return nil
}

func (c *Config) resolvePaths(configPath string) {
	configDir := filepath.Dir(configPath)
	c.Dir = resolvePath(configDir, c.Dir)
}

func resolvePath(baseDir, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Clean(filepath.Join(baseDir, trimmed))
}

func defaultConfigPath() (string, bool) {
	exePath, err := os.Executable()
	if err == nil {
		exeConfigPath := filepath.Join(filepath.Dir(exePath), configFileName)
		if fileExists(exeConfigPath) {
			return exeConfigPath, true
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	cwdConfigPath := filepath.Join(cwd, configFileName)
	if fileExists(cwdConfigPath) {
		return cwdConfigPath, true
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
