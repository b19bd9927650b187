// Package config handles Gumshoe configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable that overrides the configured
// agent token. Useful for keeping secrets out of config files.
const TokenEnv = "GUMSHOE_TOKEN"

// DefaultSearchPaths returns the config file search order.
// An explicit path (from --config flag) is checked first.
// Then: ./config.yaml, ~/.config/gumshoe/config.yaml, /etc/gumshoe/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "gumshoe", "config.yaml"))
	}

	paths = append(paths, "/etc/gumshoe/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all Gumshoe configuration.
type Config struct {
	Agent    AgentConfig  `yaml:"agent"`
	Stream   StreamConfig `yaml:"stream"`
	DataDir  string       `yaml:"data_dir"`
	LogLevel string       `yaml:"log_level"`
}

// AgentConfig defines the remote investigation agent connection.
type AgentConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	// CallTimeoutSec bounds each RPC round trip in seconds (default 30).
	CallTimeoutSec int `yaml:"call_timeout_sec"`
}

// StreamConfig defines response polling behavior for long-running
// investigations. Zero values fall back to built-in defaults.
type StreamConfig struct {
	// SettleDelaySec is the pause before the first poll (default 2).
	SettleDelaySec int `yaml:"settle_delay_sec"`
	// TimeoutSec caps the total wait for a final response (default 300).
	TimeoutSec int `yaml:"timeout_sec"`
	// RetryFallbackSec is the poll interval when the agent doesn't
	// suggest one (default 4).
	RetryFallbackSec int `yaml:"retry_fallback_sec"`
}

// CallTimeout returns the per-call timeout, or zero when unset so the
// transport applies its own default.
func (a AgentConfig) CallTimeout() time.Duration {
	return time.Duration(a.CallTimeoutSec) * time.Second
}

// SettleDelay returns the configured settle delay, or zero when unset.
func (s StreamConfig) SettleDelay() time.Duration {
	return time.Duration(s.SettleDelaySec) * time.Second
}

// Timeout returns the configured stream timeout, or zero when unset.
func (s StreamConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// RetryFallback returns the configured fallback poll interval, or zero
// when unset.
func (s StreamConfig) RetryFallback() time.Duration {
	return time.Duration(s.RetryFallbackSec) * time.Second
}

// Load reads configuration from a YAML file. If TokenEnv is set in the
// environment, it overrides any token in the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	if tok := os.Getenv(TokenEnv); tok != "" {
		cfg.Agent.Token = tok
	}

	return cfg, nil
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Agent.URL == "" {
		return fmt.Errorf("agent.url is required")
	}
	if c.Agent.Token == "" {
		return fmt.Errorf("agent.token is required (or set %s)", TokenEnv)
	}
	return nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		LogLevel: "info",
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "gumshoe")
}
