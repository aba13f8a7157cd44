package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.dahuactlrc, $XDG_CONFIG_HOME/dahuactl/config.toml,
// ~/.config/dahuactl/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the preferred config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "dahuactl", "config.toml")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".dahuactlrc"),
		DefaultPath(),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Speaker
	if v := os.Getenv("DAHUACTL_HOST"); v != "" {
		cfg.Speaker.Host = v
	}
	if v := os.Getenv("DAHUACTL_USERNAME"); v != "" {
		cfg.Speaker.Username = v
	}
	if v := os.Getenv("DAHUACTL_PASSWORD"); v != "" {
		cfg.Speaker.Password = v
	}

	// Poll
	if v := os.Getenv("DAHUACTL_POLL_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Poll.Interval = i
		}
	}

	// MQTT
	if v := os.Getenv("DAHUACTL_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
		cfg.MQTT.Enabled = true
	}
	if v := os.Getenv("DAHUACTL_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("DAHUACTL_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}

	// Serve
	if v := os.Getenv("DAHUACTL_ADDR"); v != "" {
		cfg.Serve.Addr = v
	}

	// Log
	if v := os.Getenv("DAHUACTL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
