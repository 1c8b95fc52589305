// Package config handles loading configuration files and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultStatusMaxAge is how old a status file may be and still count as fresh.
	DefaultStatusMaxAge = 300 * time.Second
	// DefaultGitTimeout bounds each individual git query.
	DefaultGitTimeout = 5 * time.Second
	// DefaultGitBinary is the source-control executable.
	DefaultGitBinary = "git"

	localConfigName = ".stopgate.yml"
)

// Config represents the stopgate configuration.
type Config struct {
	Version int           `yaml:"version"`
	Status  StatusConfig  `yaml:"status"`
	Git     GitConfig     `yaml:"git"`
	Rules   RulesConfig   `yaml:"rules"`
	Logging LoggingConfig `yaml:"logging"`
}

// StatusConfig controls the status file freshness check.
type StatusConfig struct {
	MaxAge time.Duration `yaml:"max_age" env:"STOPGATE_STATUS_MAX_AGE"`
}

// GitConfig controls the diff queries.
type GitConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"STOPGATE_GIT_TIMEOUT"`
	Binary  string        `yaml:"binary" env:"STOPGATE_GIT_BINARY"`
}

// RulesConfig extends or trims the built-in change-type registry.
type RulesConfig struct {
	Disable []string     `yaml:"disable,omitempty" env:"STOPGATE_RULES_DISABLE" envSeparator:","`
	Custom  []RuleConfig `yaml:"custom,omitempty"`
}

// RuleConfig declares one change type. A custom rule whose id matches a
// built-in one replaces it in place.
type RuleConfig struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Checks   []string `yaml:"checks"`
}

// LoggingConfig controls the debug log. Logs never go to stdout or stderr.
type LoggingConfig struct {
	Debug bool   `yaml:"debug" env:"STOPGATE_DEBUG"`
	File  string `yaml:"file,omitempty" env:"STOPGATE_LOG_FILE"`
	Level string `yaml:"level,omitempty" env:"STOPGATE_LOG_LEVEL"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Status: StatusConfig{
			MaxAge: DefaultStatusMaxAge,
		},
		Git: GitConfig{
			Timeout: DefaultGitTimeout,
			Binary:  DefaultGitBinary,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration for dir. If a local config exists in dir it is used
// exclusively. Otherwise, global config is used. Environment variables are
// applied last.
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFiles(dir); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) loadFiles(dir string) error {
	localPath := LocalConfigPath(dir)
	if localPath != "" {
		if _, err := os.Stat(localPath); err == nil {
			return c.loadFrom(localPath)
		}
	}

	globalPath := globalConfigPath()
	if globalPath != "" {
		if err := c.loadFrom(globalPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// loadFrom loads and merges a config file into the current config.
func (c *Config) loadFrom(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	c.merge(&overlay)
	return nil
}

// merge applies overlay config onto the current config.
// Zero values in the overlay keep the current value.
// Lists are appended, not replaced.
func (c *Config) merge(overlay *Config) {
	if overlay.Version > 0 {
		c.Version = overlay.Version
	}
	if overlay.Status.MaxAge > 0 {
		c.Status.MaxAge = overlay.Status.MaxAge
	}
	if overlay.Git.Timeout > 0 {
		c.Git.Timeout = overlay.Git.Timeout
	}
	if overlay.Git.Binary != "" {
		c.Git.Binary = overlay.Git.Binary
	}
	c.Rules.Disable = appendUnique(c.Rules.Disable, overlay.Rules.Disable)
	c.Rules.Custom = appendRulesUnique(c.Rules.Custom, overlay.Rules.Custom)
	if overlay.Logging.Debug {
		c.Logging.Debug = true
	}
	if overlay.Logging.File != "" {
		c.Logging.File = overlay.Logging.File
	}
	if overlay.Logging.Level != "" {
		c.Logging.Level = overlay.Logging.Level
	}
}

// normalize restores defaults for values an override left unusable. The
// freshness window and the git timeout may be tightened, never loosened.
func (c *Config) normalize() {
	if c.Status.MaxAge <= 0 || c.Status.MaxAge > DefaultStatusMaxAge {
		c.Status.MaxAge = DefaultStatusMaxAge
	}
	if c.Git.Timeout <= 0 || c.Git.Timeout > DefaultGitTimeout {
		c.Git.Timeout = DefaultGitTimeout
	}
	if c.Git.Binary == "" {
		c.Git.Binary = DefaultGitBinary
	}
}

func appendRulesUnique(base, items []RuleConfig) []RuleConfig {
	seen := make(map[string]bool)
	for _, r := range base {
		seen[r.ID] = true
	}
	result := base
	for _, r := range items {
		if !seen[r.ID] {
			result = append(result, r)
			seen[r.ID] = true
		}
	}
	return result
}

func appendUnique(base, items []string) []string {
	seen := make(map[string]bool)
	for _, s := range base {
		seen[s] = true
	}
	result := base
	for _, s := range items {
		if !seen[s] {
			result = append(result, s)
			seen[s] = true
		}
	}
	return result
}

func globalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "stopgate", "config.yml")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return globalConfigPath()
}

// LocalConfigPath returns the project config path inside dir.
func LocalConfigPath(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, localConfigName)
}
