// Package config loads the buildcache configuration from YAML with
// environment expansion and .env support.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/buildcache/internal/policy"
	"git.home.luguber.info/inful/buildcache/internal/problems"
)

// Config represents the application configuration.
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	Cache   CacheConfig   `yaml:"cache"`
	Report  ReportConfig  `yaml:"report"`
	History HistoryConfig `yaml:"history"`
	Metrics MetricsConfig `yaml:"metrics"`
	Events  EventsConfig  `yaml:"events"`
}

// BuildConfig locates the build manifest the configuration phase reads.
type BuildConfig struct {
	Manifest string `yaml:"manifest"`
}

// CacheConfig controls the instant execution cache.
type CacheConfig struct {
	// Enabled defaults to true; use a pointer so an explicit "false"
	// survives defaulting.
	Enabled   *bool  `yaml:"enabled,omitempty"`
	Directory string `yaml:"directory"`
	// FailOnProblems defaults to true; use a pointer so an explicit
	// "false" survives defaulting.
	FailOnProblems *bool `yaml:"fail_on_problems,omitempty"`
	// MaxProblems defaults to unlimited; an explicit 0 is clamped to 1
	// by the collector.
	MaxProblems *int `yaml:"max_problems,omitempty"`
}

// ReportConfig controls where problem reports are written.
type ReportConfig struct {
	Directory     string `yaml:"directory"`
	RetentionDays int    `yaml:"retention_days"`
}

// HistoryConfig controls the invocation history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig controls the Prometheus endpoint exposed in daemon mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// EventsConfig controls NATS publication of invocation outcomes.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Load reads the configuration file, expanding ${VAR} references from
// the environment (optionally seeded from a .env file).
func Load(path string) (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	data, err := os.ReadFile(path) // #nosec G304 - config path comes from the CLI
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Build.Manifest == "" {
		c.Build.Manifest = "build.yaml"
	}
	if c.Cache.Enabled == nil {
		enabled := true
		c.Cache.Enabled = &enabled
	}
	if c.Cache.Directory == "" {
		c.Cache.Directory = ".buildcache/state"
	}
	if c.Report.Directory == "" {
		c.Report.Directory = ".buildcache/reports"
	}
	if c.Report.RetentionDays <= 0 {
		c.Report.RetentionDays = 7
	}
	if c.History.Path == "" {
		c.History.Path = ".buildcache/history.db"
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9464"
	}
	if c.Events.URL == "" {
		c.Events.URL = "nats://127.0.0.1:4222"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "buildcache.invocations"
	}
}

// CacheEnabled reports whether the instant execution cache is active.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// Policy resolves the immutable per-invocation policy. CLI overrides
// take precedence over the config file.
func (c *Config) Policy(failOverride *bool, maxOverride *int) policy.Policy {
	pol := policy.Policy{FailOnProblems: true, MaxProblems: problems.Unlimited}
	if c.Cache.FailOnProblems != nil {
		pol.FailOnProblems = *c.Cache.FailOnProblems
	}
	if c.Cache.MaxProblems != nil {
		pol.MaxProblems = *c.Cache.MaxProblems
	}
	if failOverride != nil {
		pol.FailOnProblems = *failOverride
	}
	if maxOverride != nil {
		pol.MaxProblems = *maxOverride
	}
	return pol
}
