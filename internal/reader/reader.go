// Package reader loads data files into documents.
//
// A Reader resolves each identifier against its data path, renders the file
// through the template engine, decodes it and expands "_include_" directives
// at every mapping depth. Several identifiers may be loaded at once as a
// comma separated list; later files override keys of earlier ones.
//
// A Reader is not safe for concurrent use.
package reader

import (
	"log/slog"
	"strings"
	"time"

	"github.com/neox5/datareader/internal/codec"
	"github.com/neox5/datareader/internal/document"
	"github.com/neox5/datareader/internal/render"
)

// Renderer preprocesses raw file text.
type Renderer interface {
	Render(name string, text []byte, ctx render.Context) ([]byte, error)
}

// Codecs selects the decoder for a file location.
type Codecs interface {
	ForPath(location string) codec.Codec
}

// Observer receives load events. Implementations must be cheap; they run
// inline with loading.
type Observer interface {
	DocumentLoaded(location string)
	DocumentMissing(location string)
	IncludeExpanded(identifier string)
	LoadFinished(elapsed time.Duration, err error)
}

// Reader loads documents and keeps the result of the last load.
type Reader struct {
	dataPath    string
	defaultPath func() string
	vars        map[string]any

	renderer Renderer
	codecs   Codecs
	observer Observer
	logger   *slog.Logger

	contents document.Document
}

// Option configures a Reader.
type Option func(*Reader)

// WithDataPath sets the initial data path.
func WithDataPath(path string) Option {
	return func(r *Reader) { r.dataPath = path }
}

// WithDefaultDataPath supplies the data path used while none is set
// explicitly. fn is consulted on every resolution.
func WithDefaultDataPath(fn func() string) Option {
	return func(r *Reader) { r.defaultPath = fn }
}

// WithVars exposes values to templates as .Vars.
func WithVars(vars map[string]any) Option {
	return func(r *Reader) { r.vars = vars }
}

// WithRenderer replaces the template engine.
func WithRenderer(renderer Renderer) Option {
	return func(r *Reader) { r.renderer = renderer }
}

// WithCodecs replaces the codec registry.
func WithCodecs(codecs Codecs) Option {
	return func(r *Reader) { r.codecs = codecs }
}

// WithObserver registers an observer for load events.
func WithObserver(o Observer) Option {
	return func(r *Reader) { r.observer = o }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) { r.logger = logger }
}

// New creates a Reader.
func New(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}

	if r.renderer == nil {
		r.renderer = render.New(nil)
	}
	if r.codecs == nil {
		r.codecs = codec.Default()
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// SetDataPath sets the directory relative identifiers are resolved against.
// An empty path re-enables the default data path, if any.
func (r *Reader) SetDataPath(path string) {
	r.dataPath = path
}

// DataPath returns the explicit data path, or the default when none is set.
func (r *Reader) DataPath() string {
	if r.dataPath != "" {
		return r.dataPath
	}
	if r.defaultPath != nil {
		return r.defaultPath()
	}
	return ""
}

// Contents returns the result of the last successful Load, or nil before the
// first one. The returned document is shared with the Reader.
func (r *Reader) Contents() document.Document {
	return r.contents
}

// Load reads every identifier in list (a single identifier or a comma
// separated list), merges them in order and stores the result as the
// Reader's contents. On error the previous contents are kept.
func (r *Reader) Load(list string) (document.Document, error) {
	start := time.Now()

	doc, err := r.loadList(list, nil)
	elapsed := time.Since(start)
	r.observer.LoadFinished(elapsed, err)
	if err != nil {
		return nil, err
	}

	r.logger.Info("data loaded",
		"files", list,
		"keys", len(doc),
		"duration", elapsed)

	r.contents = doc
	return doc, nil
}

// SplitList splits a comma separated identifier list, trimming whitespace
// and dropping empty entries.
func SplitList(list string) []string {
	parts := strings.Split(list, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// loadList loads each identifier of list and merges the results.
func (r *Reader) loadList(list string, tr trail) (document.Document, error) {
	all := document.Document{}
	for _, id := range SplitList(list) {
		doc, err := r.loadOne(id, tr)
		if err != nil {
			return nil, err
		}
		all.Merge(doc)
	}
	return all, nil
}

type nopObserver struct{}

func (nopObserver) DocumentLoaded(string) {}
func (nopObserver) DocumentMissing(string) {}
func (nopObserver) IncludeExpanded(string) {}
func (nopObserver) LoadFinished(time.Duration, error) {}
