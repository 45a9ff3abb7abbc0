// Package config loads the settings of the datareader command.
//
// A settings file is itself a data file: it is read with the reader package,
// so it may use templates and "_include_" directives. The merged document is
// decoded into RawConfig and then resolved into a validated Config with
// defaults applied.
package config

import (
	"fmt"
	"time"
)

const (
	// Server defaults
	DefaultServerPort = 8080
	DefaultServerPath = "/contents"

	// Output default
	DefaultOutput = "yaml"

	// Monitor defaults
	DefaultMonitorInterval = 5 * time.Second
)

// Config holds the complete command configuration.
type Config struct {
	DataPath string
	Files    []string
	Vars     map[string]any
	Output   string
	Server   ServerConfig
	Export   ExportConfig
	Monitor  MonitorConfig
}

// ServerConfig defines the HTTP listener used by serve.
type ServerConfig struct {
	Port int
	Path string
}

// Addr returns the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Validate applies defaults and validates server configuration.
func (s *ServerConfig) Validate() error {
	if s.Port == 0 {
		s.Port = DefaultServerPort
	}
	if s.Path == "" {
		s.Path = DefaultServerPath
	}

	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	if s.Path[0] != '/' {
		return fmt.Errorf("server path must start with '/': %q", s.Path)
	}
	return nil
}

// MonitorConfig controls periodic resource logging during serve.
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Validate applies defaults and validates monitor configuration.
func (m *MonitorConfig) Validate() error {
	if m.Interval == 0 {
		m.Interval = DefaultMonitorInterval
	}
	if m.Interval < 0 {
		return fmt.Errorf("monitor interval must be positive: %s", m.Interval)
	}
	return nil
}

// Default returns the configuration used when no settings file is given.
func Default() *Config {
	cfg, err := Resolve(&RawConfig{})
	if err != nil {
		// defaults are constants; failure here is a programming error
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return cfg
}
