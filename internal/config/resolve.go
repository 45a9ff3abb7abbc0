package config

import (
	"fmt"
	"maps"
	"strings"
)

// Resolve builds the final config from raw settings, applying defaults
func Resolve(raw *RawConfig) (*Config, error) {
	cfg := &Config{
		DataPath: raw.DataPath,
		Files:    append([]string(nil), raw.Files...),
		Vars:     maps.Clone(raw.Vars),
		Output:   strings.ToLower(raw.Output),
		Server: ServerConfig{
			Port: raw.Server.Port,
			Path: raw.Server.Path,
		},
		Monitor: MonitorConfig{
			Enabled:  raw.Monitor.Enabled,
			Interval: raw.Monitor.Interval,
		},
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.Vars == nil {
		cfg.Vars = make(map[string]any)
	}

	export, err := resolveExport(&raw.Export)
	if err != nil {
		return nil, err
	}
	cfg.Export = export

	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if err := cfg.Monitor.Validate(); err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	if err := checkRoutes(cfg); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	return cfg, nil
}

// resolveExport converts raw exporter settings and applies defaults
func resolveExport(raw *RawExportConfig) (ExportConfig, error) {
	var export ExportConfig

	if raw.Prometheus != nil {
		export.Prometheus = &PrometheusExportConfig{
			Enabled:        raw.Prometheus.Enabled,
			Path:           raw.Prometheus.Path,
			RuntimeMetrics: raw.Prometheus.RuntimeMetrics,
		}
	}

	if raw.OTEL != nil {
		export.OTEL = &OTELExportConfig{
			Enabled:   raw.OTEL.Enabled,
			Transport: raw.OTEL.Transport,
			Host:      raw.OTEL.Host,
			Port:      raw.OTEL.Port,
			Interval: IntervalConfig{
				Push:    raw.OTEL.Interval.Push,
				Timeout: raw.OTEL.Interval.Timeout,
			},
			Resource: maps.Clone(raw.OTEL.Resource),
			Headers:  maps.Clone(raw.OTEL.Headers),
		}
	}

	if err := export.Validate(); err != nil {
		return ExportConfig{}, fmt.Errorf("export: %w", err)
	}

	return export, nil
}

// checkRoutes rejects a Prometheus path that would be registered on the same
// route as the document endpoints.
func checkRoutes(cfg *Config) error {
	if !cfg.Export.PrometheusEnabled() {
		return nil
	}

	promPath := cfg.Export.Prometheus.Path
	if strings.ContainsAny(promPath, "{}") ||
		strings.TrimSuffix(promPath, "/") == strings.TrimSuffix(cfg.Server.Path, "/") {
		return fmt.Errorf("prometheus path %q conflicts with server path %q", promPath, cfg.Server.Path)
	}
	return nil
}
