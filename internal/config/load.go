package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/neox5/datareader/internal/reader"
	"go.yaml.in/yaml/v4"
)

// Load reads and resolves a settings file
func Load(path string) (*Config, error) {
	raw, err := Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg, err := Resolve(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config: %w", err)
	}

	return cfg, nil
}

// Parse reads a settings file through the reader, so includes and templates
// apply, and decodes the merged document. A relative data_path is taken
// relative to the settings file.
func Parse(path string) (*RawConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	// The reader treats a missing file as empty; an explicit settings file
	// must exist.
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dir := filepath.Dir(abs)
	r := reader.New(reader.WithDataPath(dir))
	doc, err := r.Load(filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config document: %w", err)
	}

	var raw RawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if raw.DataPath != "" && !filepath.IsAbs(raw.DataPath) {
		raw.DataPath = filepath.Join(dir, raw.DataPath)
	}

	if err := Validate(&raw); err != nil {
		return nil, err
	}

	return &raw, nil
}
