// Package config handles global configuration for oatrends.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/oatrends/config.yml.
type GlobalConfig struct {
	Mailto             string  `yaml:"mailto,omitempty"`
	PoliteDelaySeconds float64 `yaml:"polite_delay_seconds,omitempty"`
	MaxRetries         int     `yaml:"max_retries,omitempty"`
	MaxCandidates      int     `yaml:"max_candidates,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "oatrends"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// Defaults applied when the config file is absent or a field unset.
	DefaultPoliteDelaySeconds = 0.6
	DefaultMaxRetries         = 5
	DefaultMaxCandidates      = 25
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/oatrends/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobal loads the global configuration file, applying defaults for unset
// fields. Returns a default config (not an error) if the file doesn't exist.
func LoadGlobal() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := &GlobalConfig{}
	path := GlobalConfigPath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}
	cfg.applyDefaults()

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalCache clears the cached global config. Useful for testing.
func ResetGlobalCache() {
	globalConfigCache = nil
}

func (c *GlobalConfig) applyDefaults() {
	if c.PoliteDelaySeconds <= 0 {
		c.PoliteDelaySeconds = DefaultPoliteDelaySeconds
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = DefaultMaxCandidates
	}
}

// PoliteDelay returns the configured inter-request delay as a duration.
func (c *GlobalConfig) PoliteDelay() time.Duration {
	return time.Duration(c.PoliteDelaySeconds * float64(time.Second))
}

// Save writes the configuration to the global config path, creating the
// directory if needed.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = nil
	return nil
}
