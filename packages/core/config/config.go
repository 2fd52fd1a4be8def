// Package config loads reqctl configuration files. Files may be JSON
// or YAML; CLI flags always override file values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the reqctl configuration
type Config struct {
	Curl         string            `json:"curl,omitempty" yaml:"curl,omitempty"`                 // transport binary path
	DebugSession string            `json:"debugSession,omitempty" yaml:"debugSession,omitempty"` // XDEBUG session name
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`           // default headers for all requests
	Timeout      int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`           // seconds
	Insecure     *bool             `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	Proxy        string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	Verbose      *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	NoColor      *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	HistoryDB    string            `json:"historyDB,omitempty" yaml:"historyDB,omitempty"`
	History      *bool             `json:"history,omitempty" yaml:"history,omitempty"`
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetInsecure returns the insecure setting, defaulting to false
func (c *Config) GetInsecure() bool {
	return getBool(c.Insecure, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetHistory returns whether invocation history is recorded, defaulting to true
func (c *Config) GetHistory() bool {
	return getBool(c.History, true)
}

// GetCurl returns the transport binary, defaulting to "curl"
func (c *Config) GetCurl() string {
	if c.Curl == "" {
		return "curl"
	}
	return c.Curl
}

// DefaultConfig returns a config with built-in defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".reqctl.config.json",
	"reqctl.config.json",
	".reqctl.config.yaml",
	"reqctl.config.yaml",
	".reqctlrc",
}

// LoadConfig loads configuration from the specified path. With an
// empty path it layers configs: home-directory defaults first, then
// the working directory's config merged on top.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	base := DefaultConfig()
	if home, err := os.UserHomeDir(); err == nil {
		homeConfig, err := FindAndLoadConfig(home)
		if err != nil {
			return nil, err
		}
		base = base.Merge(homeConfig)
	}

	cwdConfig, err := FindAndLoadConfig(".")
	if err != nil {
		return nil, err
	}
	return base.Merge(cwdConfig), nil
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("invalid YAML config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("invalid JSON config %s: %w", path, err)
		}
	}

	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Curl != "" {
		result.Curl = other.Curl
	}
	if other.DebugSession != "" {
		result.DebugSession = other.DebugSession
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.HistoryDB != "" {
		result.HistoryDB = other.HistoryDB
	}
	if other.Insecure != nil {
		result.Insecure = other.Insecure
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.History != nil {
		result.History = other.History
	}
	// The header map is rebuilt so merging never mutates either input.
	if c.Headers != nil || other.Headers != nil {
		result.Headers = make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			result.Headers[k] = v
		}
		for k, v := range other.Headers {
			result.Headers[k] = v
		}
	}

	return &result
}
