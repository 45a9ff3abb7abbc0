package config

import (
	"strings"
	"time"

	"go.yaml.in/yaml/v4"
)

// RawConfig represents the unresolved settings file structure
type RawConfig struct {
	DataPath string           `yaml:"data_path"`
	Files    RawFileList      `yaml:"files"`
	Vars     map[string]any   `yaml:"vars,omitempty"`
	Output   string           `yaml:"output"`
	Server   RawServerConfig  `yaml:"server"`
	Export   RawExportConfig  `yaml:"export"`
	Monitor  RawMonitorConfig `yaml:"monitor"`
}

// RawFileList holds the data files to load
type RawFileList []string

// UnmarshalYAML handles both comma list ("a.yml,b.yml") and sequence forms
func (f *RawFileList) UnmarshalYAML(value *yaml.Node) error {
	// Try string form first (shorthand)
	var simple string
	if err := value.Decode(&simple); err == nil {
		*f = nil
		for _, part := range strings.Split(simple, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*f = append(*f, part)
			}
		}
		return nil
	}

	// Fall back to sequence form
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*f = list
	return nil
}

// RawServerConfig defines the HTTP listener for serve mode
type RawServerConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// RawMonitorConfig controls the resource monitor
type RawMonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}
