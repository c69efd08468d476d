package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# Casper configuration. Relative paths resolve against this file's directory.\n"

// Save writes the config to the user's config directory and returns the path.
func (c *Config) Save() (string, error) {
	path := filepath.Join(ConfigDir(), "config.yaml")
	return path, c.SaveTo(path)
}

// SaveTo writes the config to a specific path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	return os.WriteFile(path, append([]byte(fileHeader), data...), 0644)
}

// WriteRequested saves cfg when --write-config was given. It returns the path
// written, or "" when the flag is unset. The value "default" selects
// ConfigDir().
func WriteRequested(cfg *Config) (string, error) {
	switch target := *flagWriteConfig; target {
	case "":
		return "", nil
	case "default":
		return cfg.Save()
	default:
		return target, cfg.SaveTo(target)
	}
}
