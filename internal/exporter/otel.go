package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/neox5/datareader/internal/config"
	"github.com/neox5/datareader/internal/metric"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// meterName is the instrumentation scope of all instruments.
const meterName = "github.com/neox5/datareader"

// OTELExporter pushes loader metrics to an OTEL collector.
type OTELExporter struct {
	config        *config.OTELExportConfig
	meterProvider *sdkmetric.MeterProvider
	cancelFunc    context.CancelFunc
}

// instrument holds an OTEL observable instrument and its value reference.
type instrument struct {
	counter    otelmetric.Float64ObservableCounter
	gauge      otelmetric.Float64ObservableGauge
	value      func() float64
	attributes []attribute.KeyValue
}

// NewOTELExporter creates a new OTEL exporter.
func NewOTELExporter(cfg *config.OTELExportConfig, metrics []metric.Descriptor) (*OTELExporter, error) {
	res, err := createOTELResource(cfg.Resource)
	if err != nil {
		return nil, err
	}

	exporter, err := createMetricExporter(cfg)
	if err != nil {
		return nil, err
	}

	// Create periodic reader with push interval
	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(cfg.Interval.Push),
		sdkmetric.WithTimeout(cfg.Interval.Timeout),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	if err := registerOTELInstruments(meterProvider.Meter(meterName), metrics); err != nil {
		return nil, err
	}

	return &OTELExporter{
		config:        cfg,
		meterProvider: meterProvider,
	}, nil
}

// Start begins periodic metric export and blocks until ctx is done.
// Call Stop afterwards to flush and release the exporter.
func (e *OTELExporter) Start(ctx context.Context) error {
	slog.Info("starting otel exporter",
		"transport", e.config.Transport,
		"endpoint", e.config.GetEndpoint(),
		"push_interval", e.config.Interval.Push,
	)

	readCtx, cancel := context.WithCancel(ctx)
	e.cancelFunc = cancel

	// Periodic reader handles push automatically
	<-readCtx.Done()
	return nil
}

// Stop flushes pending metrics and shuts the provider down.
func (e *OTELExporter) Stop() error {
	slog.Info("shutting down otel exporter")

	if e.cancelFunc != nil {
		e.cancelFunc()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return e.meterProvider.Shutdown(ctx)
}

// createMetricExporter creates the OTLP exporter for the configured transport.
func createMetricExporter(cfg *config.OTELExportConfig) (sdkmetric.Exporter, error) {
	switch cfg.Transport {
	case "http":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.GetEndpoint()),
			otlpmetrichttp.WithInsecure(),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}

		exporter, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP http exporter: %w", err)
		}
		return exporter, nil

	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.GetEndpoint()),
			otlpmetricgrpc.WithInsecure(),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}

		exporter, err := otlpmetricgrpc.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP grpc exporter: %w", err)
		}
		return exporter, nil

	default:
		return nil, fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
}

// createOTELResource creates an OTEL resource from configuration attributes.
func createOTELResource(resourceAttrs map[string]string) (*resource.Resource, error) {
	attrs := make([]attribute.KeyValue, 0, len(resourceAttrs))
	for k, v := range resourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}

// registerOTELInstruments creates instruments for all metrics and registers
// one callback observing them. Descriptors sharing a name share an instrument.
func registerOTELInstruments(meter otelmetric.Meter, metrics []metric.Descriptor) error {
	var instruments []instrument
	counters := make(map[string]otelmetric.Float64ObservableCounter)
	gauges := make(map[string]otelmetric.Float64ObservableGauge)
	var observables []otelmetric.Observable

	for _, m := range metrics {
		// Sorted for stable attribute sets
		keys := make([]string, 0, len(m.Attributes))
		for key := range m.Attributes {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		attrs := make([]attribute.KeyValue, 0, len(keys))
		for _, key := range keys {
			attrs = append(attrs, attribute.String(key, m.Attributes[key]))
		}

		inst := instrument{
			value:      m.Value,
			attributes: attrs,
		}

		switch m.Type {
		case metric.MetricTypeCounter:
			counter, exists := counters[m.OTELName]
			if !exists {
				var err error
				counter, err = meter.Float64ObservableCounter(
					m.OTELName,
					otelmetric.WithDescription(m.Description),
				)
				if err != nil {
					return fmt.Errorf("failed to create counter %q: %w", m.OTELName, err)
				}
				counters[m.OTELName] = counter
				observables = append(observables, counter)
			}
			inst.counter = counter

		case metric.MetricTypeGauge:
			gauge, exists := gauges[m.OTELName]
			if !exists {
				var err error
				gauge, err = meter.Float64ObservableGauge(
					m.OTELName,
					otelmetric.WithDescription(m.Description),
				)
				if err != nil {
					return fmt.Errorf("failed to create gauge %q: %w", m.OTELName, err)
				}
				gauges[m.OTELName] = gauge
				observables = append(observables, gauge)
			}
			inst.gauge = gauge
		}

		instruments = append(instruments, inst)

		slog.Debug("registered otel metric",
			"name", m.OTELName,
			"type", m.Type,
			"attributes", len(attrs))
	}

	_, err := meter.RegisterCallback(
		func(ctx context.Context, observer otelmetric.Observer) error {
			slog.Debug("otel push", "metrics", len(instruments))

			for _, inst := range instruments {
				val := inst.value()
				if inst.counter != nil {
					observer.ObserveFloat64(inst.counter, val,
						otelmetric.WithAttributes(inst.attributes...))
				}
				if inst.gauge != nil {
					observer.ObserveFloat64(inst.gauge, val,
						otelmetric.WithAttributes(inst.attributes...))
				}
			}
			return nil
		},
		observables...,
	)
	if err != nil {
		return fmt.Errorf("failed to register callback: %w", err)
	}

	return nil
}
