package exporter

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/neox5/datareader/internal/metric"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricDescriptor holds metadata for a Prometheus metric.
type metricDescriptor struct {
	name        string
	desc        *prometheus.Desc
	valueType   prometheus.ValueType
	value       func() float64
	labelValues []string
}

// collector implements prometheus.Collector to read recorder values on scrape.
type collector struct {
	descs       []*prometheus.Desc
	descriptors []metricDescriptor
}

// NewPrometheusRegistry creates a registry exposing the given metrics.
// Go runtime and process collectors are added when runtime is set.
func NewPrometheusRegistry(metrics []metric.Descriptor, runtime bool) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(newCollector(metrics))

	if runtime {
		promRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return promRegistry
}

// NewPrometheusHandler returns the scrape handler for promRegistry.
func NewPrometheusHandler(promRegistry *prometheus.Registry) http.Handler {
	handler := promhttp.InstrumentMetricHandler(promRegistry, promhttp.HandlerFor(
		promRegistry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))
	return loggingMiddleware(handler)
}

// newCollector creates a collector from metric descriptors.
// Descriptors sharing a name share one prometheus.Desc.
func newCollector(metrics []metric.Descriptor) *collector {
	c := &collector{}
	descs := make(map[string]*prometheus.Desc)

	for _, m := range metrics {
		var valueType prometheus.ValueType
		switch m.Type {
		case metric.MetricTypeCounter:
			valueType = prometheus.CounterValue
		case metric.MetricTypeGauge:
			valueType = prometheus.GaugeValue
		}

		// Extract and sort label names for consistent ordering
		var labelNames []string
		for key := range m.Attributes {
			labelNames = append(labelNames, key)
		}
		sort.Strings(labelNames)

		// Build label values in same order
		labelValues := make([]string, len(labelNames))
		for i, name := range labelNames {
			labelValues[i] = m.Attributes[name]
		}

		desc, exists := descs[m.PrometheusName]
		if !exists {
			desc = prometheus.NewDesc(
				m.PrometheusName,
				m.Description,
				labelNames,
				nil, // No constant labels
			)
			descs[m.PrometheusName] = desc
			c.descs = append(c.descs, desc)

			slog.Debug("registered prometheus metric",
				"name", m.PrometheusName,
				"type", m.Type,
				"labels", labelNames)
		}

		c.descriptors = append(c.descriptors, metricDescriptor{
			name:        m.PrometheusName,
			desc:        desc,
			valueType:   valueType,
			value:       m.Value,
			labelValues: labelValues,
		})
	}

	return c
}

// Describe sends metric descriptors to the channel.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.descs {
		ch <- desc
	}
}

// Collect reads recorder values and sends metrics to the channel.
// This is called on each Prometheus scrape.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.descriptors {
		metric, err := prometheus.NewConstMetric(
			m.desc,
			m.valueType,
			m.value(),
			m.labelValues...,
		)
		if err != nil {
			slog.Debug("skipped prometheus metric",
				"name", m.name,
				"labels", m.labelValues,
				"error", err)
			continue
		}

		ch <- metric
	}
}

// loggingMiddleware logs scrape requests when debug logging is enabled
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("prometheus scrape", "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
