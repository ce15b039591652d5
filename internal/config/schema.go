package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version    int             `yaml:"version"`
	ListenAddr string          `yaml:"listen_addr"`
	LogLevel   string          `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Database   DatabaseConfig  `yaml:"database"`
	Graph      GraphConfig     `yaml:"graph"`
	Collector  CollectorConfig `yaml:"collector"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
	// Retain is the number of most recent snapshots kept; 0 keeps everything
	Retain int `yaml:"retain" validate:"gte=0"`
}

// GraphConfig holds the display policies applied on every rebuild
type GraphConfig struct {
	SnapshotLimit int  `yaml:"snapshot_limit" validate:"gte=1"`
	MaskIPLabels  bool `yaml:"mask_ip_labels"`
}

// CollectorConfig controls periodic discovery
type CollectorConfig struct {
	Enabled       bool      `yaml:"enabled"`
	Interval      Duration  `yaml:"interval"`
	HostProcesses bool      `yaml:"host_processes"`
	Containers    bool      `yaml:"containers"`
	Sudo          bool      `yaml:"sudo"`
	SSH           SSHConfig `yaml:"ssh"`
}

// SSHConfig points the collector at a remote docker host.
// An empty Host collects from the local machine.
type SSHConfig struct {
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty" validate:"omitempty,gte=1,lte=65535"`
	User    string `yaml:"user,omitempty"`
	KeyPath string `yaml:"key_path,omitempty"`
}

// Remote reports whether collection runs over SSH
func (s SSHConfig) Remote() bool {
	return s.Host != ""
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
