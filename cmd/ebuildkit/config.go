package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrConfigNotFound is returned when ebuildkit.toml doesn't exist at the
// given path, mirroring the teacher's ErrPackagesConfigNotFound sentinel
// for a missing packages.toml.
var ErrConfigNotFound = errors.New("ebuildkit.toml not found")

// Config is ebuildkit's CLI configuration: the EAPI `parse atom` uses
// when no --eapi flag is given, and whether diagnostics are colored.
// `build` does not read DefaultEAPI; an ebuild without an EAPI= line is
// built as EAPI 0.
type Config struct {
	DefaultEAPI string `toml:"default_eapi"`
	ColorOutput bool   `toml:"color_output"`
}

// LoadConfig reads and parses an ebuildkit.toml from path.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg := &Config{DefaultEAPI: "8", ColorOutput: true}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
