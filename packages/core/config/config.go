package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the hitstudio configuration
type Config struct {
	ProxyEndpoint         string            `json:"proxyEndpoint,omitempty" yaml:"proxyEndpoint,omitempty"`
	Timeout               int               `json:"timeout,omitempty" yaml:"timeout,omitempty"` // milliseconds, 0 means no deadline
	HistoryLimit          int               `json:"historyLimit,omitempty" yaml:"historyLimit,omitempty"`
	Database              string            `json:"database,omitempty" yaml:"database,omitempty"`
	AllowDeleteBody       *bool             `json:"allowDeleteBody,omitempty" yaml:"allowDeleteBody,omitempty"`
	RecordTransportErrors *bool             `json:"recordTransportErrors,omitempty" yaml:"recordTransportErrors,omitempty"`
	Listen                string            `json:"listen,omitempty" yaml:"listen,omitempty"`
	UpstreamProxy         string            `json:"upstreamProxy,omitempty" yaml:"upstreamProxy,omitempty"` // outbound proxy for the forwarder
	FollowRedirects       *bool             `json:"followRedirects,omitempty" yaml:"followRedirects,omitempty"`
	MaxRedirects          int               `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	ValidateSSL           *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	RateLimit             float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"` // sends per second, 0 means unlimited
	Headers               map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Log                   LogConfig         `json:"log,omitempty" yaml:"log,omitempty"`
	NoColor               *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `json:"level,omitempty" yaml:"level,omitempty"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"` // console or json
	OutputPath string `json:"outputPath,omitempty" yaml:"outputPath,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetAllowDeleteBody returns whether DELETE requests may carry a body, defaulting to false
func (c *Config) GetAllowDeleteBody() bool {
	return getBool(c.AllowDeleteBody, false)
}

// GetRecordTransportErrors returns whether failed dispatches are written to history, defaulting to false
func (c *Config) GetRecordTransportErrors() bool {
	return getBool(c.RecordTransportErrors, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration converts Timeout to a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return 0
	}
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hitstudio.json",
	"hitstudio.json",
	".hitstudio.yaml",
	"hitstudio.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
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

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return config, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.ProxyEndpoint != "" {
		result.ProxyEndpoint = other.ProxyEndpoint
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.HistoryLimit > 0 {
		result.HistoryLimit = other.HistoryLimit
	}
	if other.Database != "" {
		result.Database = other.Database
	}
	if other.Listen != "" {
		result.Listen = other.Listen
	}
	if other.UpstreamProxy != "" {
		result.UpstreamProxy = other.UpstreamProxy
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.Log.Level != "" {
		result.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		result.Log.Format = other.Log.Format
	}
	if other.Log.OutputPath != "" {
		result.Log.OutputPath = other.Log.OutputPath
	}

	// Boolean flags - only override if explicitly set in other config
	if other.AllowDeleteBody != nil {
		result.AllowDeleteBody = other.AllowDeleteBody
	}
	if other.RecordTransportErrors != nil {
		result.RecordTransportErrors = other.RecordTransportErrors
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if len(other.Headers) > 0 {
		merged := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range other.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	return &result
}

// SaveConfig saves the configuration to a file. The format follows the
// file extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
