package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a config file when --config is not given.
const EnvConfig = "MCASSETS_CONFIG"

// Load resolves the configuration with priority defaults < file < flags and
// validates the result. flags may be nil.
func Load(flags *Flags) (*Config, error) {
	cfg := Default()

	configPath := flags.ConfigPath()
	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := flags.validate(); err != nil {
		return nil, err
	}
	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing candidate: a project-local
// .mcassets.yaml, ./config.yaml, then the user config directory.
func findConfigFile() string {
	candidates := []string{
		".mcassets.yaml",
		"config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "mcassets")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "mcassets")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "mcassets")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "mcassets")
	}
}

// loadFromFile merges a YAML file over cfg. Unknown keys are rejected so a
// misspelt setting does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
