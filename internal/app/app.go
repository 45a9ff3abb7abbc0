// Package app wires configuration, loading, serving and metrics together.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neox5/datareader/internal/codec"
	"github.com/neox5/datareader/internal/config"
	"github.com/neox5/datareader/internal/document"
	"github.com/neox5/datareader/internal/exporter"
	"github.com/neox5/datareader/internal/metric"
	"github.com/neox5/datareader/internal/reader"
	"github.com/neox5/datareader/internal/server"
)

// ErrNoFiles is returned when neither arguments nor settings name a file.
var ErrNoFiles = errors.New("no data files given")

// App holds initialized application components.
type App struct {
	Config   *config.Config
	Codecs   *codec.Registry
	Recorder *metric.Recorder
	Reader   *reader.Reader
}

// New initializes the application from a resolved configuration.
func New(cfg *config.Config, logger *slog.Logger) *App {
	codecs := codec.Default()
	rec := metric.NewRecorder()

	r := reader.New(
		reader.WithDataPath(cfg.DataPath),
		reader.WithVars(cfg.Vars),
		reader.WithCodecs(codecs),
		reader.WithObserver(rec),
		reader.WithLogger(logger),
	)

	return &App{
		Config:   cfg,
		Codecs:   codecs,
		Recorder: rec,
		Reader:   r,
	}
}

// Load loads ids, or the configured files when ids is empty, as one
// comma separated list.
func (a *App) Load(ids []string) (document.Document, error) {
	if len(ids) == 0 {
		ids = a.Config.Files
	}
	if len(ids) == 0 {
		return nil, ErrNoFiles
	}

	return a.Reader.Load(strings.Join(ids, ","))
}

// Encode renders the value at key (see SplitKeyPath; empty for the whole
// document) in the configured output format.
func (a *App) Encode(doc document.Document, key string) ([]byte, error) {
	c, err := a.Codecs.ByName(a.Config.Output)
	if err != nil {
		return nil, err
	}

	value, ok := doc.Lookup(SplitKeyPath(key)...)
	if !ok {
		return nil, fmt.Errorf("key %q not found", key)
	}

	return codec.EncodeValue(c, value)
}

// SplitKeyPath splits a dot separated key path. A literal dot or backslash
// inside a key is written as \. or \\.
func SplitKeyPath(key string) []string {
	if key == "" {
		return nil
	}

	var (
		keys    []string
		current strings.Builder
	)
	for i := 0; i < len(key); i++ {
		switch {
		case key[i] == '\\' && i+1 < len(key):
			i++
			current.WriteByte(key[i])
		case key[i] == '.':
			keys = append(keys, current.String())
			current.Reset()
		default:
			current.WriteByte(key[i])
		}
	}
	return append(keys, current.String())
}

// NewServer builds the HTTP server for doc, with the Prometheus endpoint
// mounted when enabled.
func (a *App) NewServer(doc document.Document) *server.Server {
	srv := server.New(a.Config.Server, doc, a.Codecs)

	if a.Config.Export.PrometheusEnabled() {
		prom := a.Config.Export.Prometheus
		registry := exporter.NewPrometheusRegistry(a.Recorder.Metrics(), prom.RuntimeMetrics)
		srv.Handle(prom.Path, exporter.NewPrometheusHandler(registry))
		slog.Debug("prometheus endpoint mounted", "path", prom.Path)
	}

	return srv
}

// NewOTELExporter builds the OTLP exporter, or returns nil when disabled.
func (a *App) NewOTELExporter() (*exporter.OTELExporter, error) {
	if !a.Config.Export.OTELEnabled() {
		return nil, nil
	}

	exp, err := exporter.NewOTELExporter(a.Config.Export.OTEL, a.Recorder.Metrics())
	if err != nil {
		return nil, fmt.Errorf("failed to create OTEL exporter: %w", err)
	}
	return exp, nil
}
