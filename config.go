package batchrouter

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors a batchrouter.yaml client configuration file:
//
//	api_key: os.environ/BATCHROUTER_API_KEY
//	base_url: https://api.batchrouter.ai
//	timeout_seconds: 60
type Config struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoadConfig reads a client config file with all environment variable
// references resolved and defaults applied.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.APIKey = resolveEnvVar(cfg.APIKey)
	cfg.BaseURL = resolveEnvVar(cfg.BaseURL)

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = int(DefaultTimeout / time.Second)
	}
	return &cfg, nil
}

// resolveEnvVar resolves a value that may reference an environment variable
// with the "os.environ/VAR_NAME" syntax. Returns the resolved value, or the
// original string if no env var pattern is found.
func resolveEnvVar(value string) string {
	if envKey, ok := strings.CutPrefix(value, "os.environ/"); ok {
		if v, found := os.LookupEnv(envKey); found {
			return v
		}
		return ""
	}
	return value
}

// Client builds a Client from the config. Zero-value fields fall back to
// the same defaults LoadConfig applies, so a hand-built Config behaves like
// a loaded one. Extra options are applied after the config's own settings.
func (c *Config) Client(opts ...Option) (*Client, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(c.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	base := []Option{
		WithBaseURL(baseURL),
		WithTimeout(timeout),
	}
	return New(c.APIKey, append(base, opts...)...)
}
