// Package config defines the homie application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level homie configuration.
type Config struct {
	Server          ServerConfig `json:"server" yaml:"server"`
	DataDir         string       `json:"data_dir" yaml:"data_dir"`
	DefaultLanguage string       `json:"default_language" yaml:"default_language"`
	LogLevel        string       `json:"log_level" yaml:"log_level"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"` // listen address, e.g., ":3030"
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":3030",
		},
		DataDir:         "./data",
		DefaultLanguage: "en",
		LogLevel:        "info",
	}
}

// Load reads a YAML config file and returns the parsed configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DBPath returns the location of the SQLite database inside the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "homie.db")
}
