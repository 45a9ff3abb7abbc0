package config

import (
	"time"

	"go.yaml.in/yaml/v4"
)

// RawExportConfig defines how loader metrics are exposed
type RawExportConfig struct {
	Prometheus *RawPrometheusExportConfig `yaml:"prometheus,omitempty"`
	OTEL       *RawOTELExportConfig       `yaml:"otel,omitempty"`
}

// RawPrometheusExportConfig defines Prometheus pull endpoint settings
type RawPrometheusExportConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Path           string `yaml:"path"`
	RuntimeMetrics bool   `yaml:"runtime_metrics"`
}

// RawOTELExportConfig defines OTEL push settings
type RawOTELExportConfig struct {
	Enabled   bool              `yaml:"enabled"`
	Transport string            `yaml:"transport"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	Interval  RawIntervalConfig `yaml:"interval"`
	Resource  map[string]string `yaml:"resource,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
}

// RawIntervalConfig defines push interval and export timeout for OTEL
type RawIntervalConfig struct {
	Push    time.Duration
	Timeout time.Duration
}

// UnmarshalYAML handles both simple (10s) and detailed (push/timeout) forms
func (i *RawIntervalConfig) UnmarshalYAML(value *yaml.Node) error {
	// Try simple duration form first; the timeout keeps its default
	var simple time.Duration
	if err := value.Decode(&simple); err == nil {
		i.Push = simple
		return nil
	}

	// Fall back to detailed form
	type intervalConfig struct {
		Push    time.Duration `yaml:"push"`
		Timeout time.Duration `yaml:"timeout"`
	}
	var detailed intervalConfig
	if err := value.Decode(&detailed); err != nil {
		return err
	}
	i.Push = detailed.Push
	i.Timeout = detailed.Timeout
	return nil
}
