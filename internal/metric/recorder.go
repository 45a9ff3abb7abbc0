package metric

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/neox5/datareader/internal/reader"
)

// Error kinds used as the "kind" attribute of the load error counter.
const (
	ErrorKindRead     = "read"
	ErrorKindTemplate = "template"
	ErrorKindParse    = "parse"
	ErrorKindInclude  = "include"
	ErrorKindCycle    = "cycle"
	ErrorKindOther    = "other"
)

var errorKinds = []string{
	ErrorKindRead,
	ErrorKindTemplate,
	ErrorKindParse,
	ErrorKindInclude,
	ErrorKindCycle,
	ErrorKindOther,
}

// Recorder counts loader activity. It implements reader.Observer and is safe
// for concurrent reads while a load is running.
type Recorder struct {
	loads         atomic.Int64
	documents     atomic.Int64
	missing       atomic.Int64
	includes      atomic.Int64
	totalDuration atomic.Int64
	lastDuration  atomic.Int64
	errors        map[string]*atomic.Int64
}

var _ reader.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with all counters at zero.
func NewRecorder() *Recorder {
	r := &Recorder{errors: make(map[string]*atomic.Int64, len(errorKinds))}
	for _, kind := range errorKinds {
		r.errors[kind] = new(atomic.Int64)
	}
	return r
}

// DocumentLoaded counts a document that was read and parsed.
func (r *Recorder) DocumentLoaded(string) { r.documents.Add(1) }

// DocumentMissing counts an identifier that resolved to nothing.
func (r *Recorder) DocumentMissing(string) { r.missing.Add(1) }

// IncludeExpanded counts one include directive entry.
func (r *Recorder) IncludeExpanded(string) { r.includes.Add(1) }

// LoadFinished counts a top-level load and its outcome.
func (r *Recorder) LoadFinished(elapsed time.Duration, err error) {
	r.loads.Add(1)
	r.totalDuration.Add(int64(elapsed))
	r.lastDuration.Store(int64(elapsed))
	if err != nil {
		r.errors[ErrorKind(err)].Add(1)
	}
}

// Loads returns the number of top-level loads.
func (r *Recorder) Loads() int64 { return r.loads.Load() }

// Documents returns the number of documents read and parsed.
func (r *Recorder) Documents() int64 { return r.documents.Load() }

// Missing returns the number of identifiers that did not exist.
func (r *Recorder) Missing() int64 { return r.missing.Load() }

// Includes returns the number of include entries expanded.
func (r *Recorder) Includes() int64 { return r.includes.Load() }

// Errors returns the number of failed loads of the given kind.
func (r *Recorder) Errors(kind string) int64 {
	c, ok := r.errors[kind]
	if !ok {
		return 0
	}
	return c.Load()
}

// ErrorKind classifies a load error.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, reader.ErrIncludeCycle):
		return ErrorKindCycle
	case errors.Is(err, reader.ErrInvalidInclude):
		return ErrorKindInclude
	case errors.Is(err, reader.ErrTemplate):
		return ErrorKindTemplate
	case errors.Is(err, reader.ErrParse):
		return ErrorKindParse
	case errors.Is(err, reader.ErrRead):
		return ErrorKindRead
	default:
		return ErrorKindOther
	}
}

// Metrics returns descriptors for every recorded value.
func (r *Recorder) Metrics() []Descriptor {
	count := func(c *atomic.Int64) func() float64 {
		return func() float64 { return float64(c.Load()) }
	}
	seconds := func(c *atomic.Int64) func() float64 {
		return func() float64 { return time.Duration(c.Load()).Seconds() }
	}

	metrics := []Descriptor{
		{
			PrometheusName: "datareader_loads_total",
			OTELName:       "datareader.loads",
			Type:           MetricTypeCounter,
			Description:    "Total number of top-level loads",
			Value:          count(&r.loads),
		},
		{
			PrometheusName: "datareader_documents_loaded_total",
			OTELName:       "datareader.documents.loaded",
			Type:           MetricTypeCounter,
			Description:    "Total number of documents read and parsed",
			Value:          count(&r.documents),
		},
		{
			PrometheusName: "datareader_documents_missing_total",
			OTELName:       "datareader.documents.missing",
			Type:           MetricTypeCounter,
			Description:    "Total number of identifiers that resolved to no file",
			Value:          count(&r.missing),
		},
		{
			PrometheusName: "datareader_includes_total",
			OTELName:       "datareader.includes",
			Type:           MetricTypeCounter,
			Description:    "Total number of include entries expanded",
			Value:          count(&r.includes),
		},
		{
			PrometheusName: "datareader_load_duration_seconds_total",
			OTELName:       "datareader.load.duration",
			Type:           MetricTypeCounter,
			Description:    "Cumulative time spent in top-level loads",
			Value:          seconds(&r.totalDuration),
		},
		{
			PrometheusName: "datareader_last_load_duration_seconds",
			OTELName:       "datareader.load.last_duration",
			Type:           MetricTypeGauge,
			Description:    "Duration of the most recent top-level load",
			Value:          seconds(&r.lastDuration),
		},
	}

	for _, kind := range errorKinds {
		metrics = append(metrics, Descriptor{
			PrometheusName: "datareader_load_errors_total",
			OTELName:       "datareader.load.errors",
			Type:           MetricTypeCounter,
			Description:    "Total number of failed top-level loads",
			Attributes:     map[string]string{"kind": kind},
			Value:          count(r.errors[kind]),
		})
	}

	return metrics
}
