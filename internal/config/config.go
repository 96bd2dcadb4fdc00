// Package config loads client configuration from an optional TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the client settings. Zero values fall back to defaults;
// command-line arguments override file values.
type Config struct {
	// Host and Port are the default server address, used when no
	// positional arguments are given.
	Host string `toml:"host"`
	Port string `toml:"port"`

	// Script is the path of an optional Lua hook script.
	Script string `toml:"script"`

	// LogFile receives debug logging when set (the terminal itself is
	// owned by the display).
	LogFile string `toml:"log_file"`

	// Banner replaces the automatic host:port status banner when set.
	Banner string `toml:"banner"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host: "localhost",
		Port: "6969",
	}
}

// DefaultPath returns the conventional config file location, or "" when
// the user config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "clc", "config.toml")
}

// Load reads the TOML file at path, merged over the defaults. A missing
// file is not an error; malformed TOML is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.Host == "" {
		cfg.Host = Default().Host
	}
	if cfg.Port == "" {
		cfg.Port = Default().Port
	}
	return cfg, nil
}
