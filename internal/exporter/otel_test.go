package exporter

import (
	"context"
	"testing"
	"time"

	"github.com/neox5/datareader/internal/config"
	"github.com/neox5/datareader/internal/metric"
	"github.com/neox5/datareader/internal/reader"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, rec *metric.Recorder) map[string]metricdata.Metrics {
	t.Helper()

	manual := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(manual))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	require.NoError(t, registerOTELInstruments(provider.Meter(meterName), rec.Metrics()))

	var rm metricdata.ResourceMetrics
	require.NoError(t, manual.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Equal(t, meterName, rm.ScopeMetrics[0].Scope.Name)

	byName := make(map[string]metricdata.Metrics)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}
	return byName
}

func TestOTELInstrumentsObserveRecorder(t *testing.T) {
	rec := metric.NewRecorder()
	rec.DocumentLoaded("a.yml")
	rec.IncludeExpanded("a.yml")
	rec.IncludeExpanded("a.yml")
	rec.LoadFinished(2*time.Second, nil)
	rec.LoadFinished(time.Second, reader.ErrParse)

	byName := collect(t, rec)

	loads, ok := byName["datareader.loads"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.True(t, loads.IsMonotonic)
	require.Len(t, loads.DataPoints, 1)
	require.Equal(t, 2.0, loads.DataPoints[0].Value)

	includes := byName["datareader.includes"].Data.(metricdata.Sum[float64])
	require.Equal(t, 2.0, includes.DataPoints[0].Value)

	last, ok := byName["datareader.load.last_duration"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Equal(t, 1.0, last.DataPoints[0].Value)
}

func TestOTELErrorCounterSharesInstrument(t *testing.T) {
	rec := metric.NewRecorder()
	rec.LoadFinished(time.Millisecond, reader.ErrRead)

	byName := collect(t, rec)

	errs, ok := byName["datareader.load.errors"].Data.(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 6)

	for _, dp := range errs.DataPoints {
		kind, found := dp.Attributes.Value(attribute.Key("kind"))
		require.True(t, found)
		if kind.AsString() == metric.ErrorKindRead {
			require.Equal(t, 1.0, dp.Value)
		} else {
			require.Equal(t, 0.0, dp.Value)
		}
	}
}

func TestNewOTELExporterTransports(t *testing.T) {
	for _, transport := range []string{"grpc", "http"} {
		t.Run(transport, func(t *testing.T) {
			cfg := &config.OTELExportConfig{Enabled: true, Transport: transport}
			require.NoError(t, cfg.Validate())

			exp, err := NewOTELExporter(cfg, metric.NewRecorder().Metrics())
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			require.NoError(t, exp.Start(ctx))
		})
	}
}

func TestNewOTELExporterUnknownTransport(t *testing.T) {
	cfg := &config.OTELExportConfig{Enabled: true, Transport: "udp"}
	_, err := NewOTELExporter(cfg, nil)
	require.ErrorContains(t, err, "unsupported transport")
}
