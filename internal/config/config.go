// Package config provides configuration management for dockerdash.
//
// Config file locations (priority order):
//  1. $DOCKERDASH_CONFIG
//  2. ./dockerdash.yaml
//  3. ~/.config/dockerdash/config.yaml
//  4. /etc/dockerdash/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr    = ":3000"
	DefaultDatabasePath  = "./dockerdash.db"
	DefaultSnapshotLimit = 100
	DefaultInterval      = 30 * time.Second
	DefaultSSHPort       = 22
	DefaultLogLevel      = "info"
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	// Keys missing from the file keep their default values
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:    1,
		ListenAddr: DefaultListenAddr,
		LogLevel:   DefaultLogLevel,
		Database:   DatabaseConfig{Path: DefaultDatabasePath},
		Graph:      GraphConfig{SnapshotLimit: DefaultSnapshotLimit},
		Collector: CollectorConfig{
			Interval:      Duration(DefaultInterval),
			HostProcesses: true,
			Containers:    true,
			SSH:           SSHConfig{Port: DefaultSSHPort},
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Graph.SnapshotLimit == 0 {
		c.Graph.SnapshotLimit = DefaultSnapshotLimit
	}
	if c.Collector.Interval == 0 {
		c.Collector.Interval = Duration(DefaultInterval)
	}
	if c.Collector.SSH.Port == 0 {
		c.Collector.SSH.Port = DefaultSSHPort
	}
}

// Validate checks field ranges after defaults are applied
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Level returns the configured log level, falling back to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Listen: %s, Database: %s\n", c.ListenAddr, c.Database.Path)
	summary += fmt.Sprintf("Graph: limit %d, mask IP labels %t\n", c.Graph.SnapshotLimit, c.Graph.MaskIPLabels)

	if !c.Collector.Enabled {
		summary += "Collector: disabled"
		return summary
	}
	target := "local"
	if c.Collector.SSH.Remote() {
		target = fmt.Sprintf("%s@%s:%d", c.Collector.SSH.User, c.Collector.SSH.Host, c.Collector.SSH.Port)
	}
	summary += fmt.Sprintf("Collector: every %s on %s (containers %t, host processes %t)",
		c.Collector.Interval.Duration(), target, c.Collector.Containers, c.Collector.HostProcesses)

	return summary
}
