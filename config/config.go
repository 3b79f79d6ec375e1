// Package config loads drum-practice settings. Defaults are overlaid with
// the YAML config file and then with DRUM_PRACTICE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"drum-practice/midi"
)

const (
	envPrefix = "DRUM_PRACTICE_"
	// EnvConfigPath overrides the config file location
	EnvConfigPath = envPrefix + "CONFIG"
)

// Config is the main configuration structure
type Config struct {
	Tempo     int     `koanf:"tempo"`
	Tolerance float64 `koanf:"tolerance"`

	// Capture input; empty picks the first port
	InputPort string `koanf:"input_port"`
	Kit       string `koanf:"kit"`

	Debug    bool   `koanf:"debug"`
	DebugLog string `koanf:"debug_log"`

	HistoryDB   string `koanf:"history_db"`
	MetricsAddr string `koanf:"metrics_addr"` // empty disables /metrics

	// GPL palette file for the terminal UI; empty uses the built-in colours
	Palette string `koanf:"palette"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{
		Tempo:     120,
		Tolerance: 0.25,
		Kit:       midi.DefaultKitName,
	}
	if dir, err := ConfigDir(); err == nil {
		cfg.HistoryDB = filepath.Join(dir, "history.db")
		cfg.DebugLog = filepath.Join(dir, "debug.log")
	}
	return cfg
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "drum-practice"), nil
}

// ConfigPath returns the config file path, honouring DRUM_PRACTICE_CONFIG
func ConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default location. A missing file is not
// an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		path = ""
	}
	return LoadFrom(path)
}

// LoadFrom layers defaults, the YAML file at path (skipped when empty or
// missing) and the environment.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// DRUM_PRACTICE_INPUT_PORT -> input_port
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the session cannot use
func (c *Config) Validate() error {
	if c.Tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %d", c.Tempo)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", c.Tolerance)
	}
	if _, ok := midi.Kits[c.Kit]; !ok {
		return fmt.Errorf("unknown kit %q (have %s)", c.Kit, strings.Join(midi.KitNames(), ", "))
	}
	return nil
}

// Save writes the config to the default location
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config as YAML
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Parser().Marshal(c.values())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) values() map[string]interface{} {
	return map[string]interface{}{
		"tempo":        c.Tempo,
		"tolerance":    c.Tolerance,
		"input_port":   c.InputPort,
		"kit":          c.Kit,
		"debug":        c.Debug,
		"debug_log":    c.DebugLog,
		"history_db":   c.HistoryDB,
		"metrics_addr": c.MetricsAddr,
		"palette":      c.Palette,
	}
}
