// Package server exposes a loaded document over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neox5/datareader/internal/codec"
	"github.com/neox5/datareader/internal/config"
	"github.com/neox5/datareader/internal/document"
)

// DefaultFormat is the encoding used when a request names none.
const DefaultFormat = "json"

// Server provides HTTP access to a document snapshot.
type Server struct {
	addr   string
	path   string
	base   string
	doc    document.Document
	codecs *codec.Registry
	server *http.Server
	mux    *http.ServeMux
}

// New creates a server for doc. Values are encoded with codecs chosen by the
// "format" query parameter.
func New(cfg config.ServerConfig, doc document.Document, codecs *codec.Registry) *Server {
	mux := http.NewServeMux()
	addr := cfg.Addr()

	// "/" as base serves the document from the root
	base := strings.TrimSuffix(cfg.Path, "/")

	s := &Server{
		addr:   addr,
		path:   cfg.Path,
		base:   base,
		doc:    doc,
		codecs: codecs,
		mux:    mux,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if base != "" {
		mux.HandleFunc("GET "+base, s.handleDocument)
	}
	mux.HandleFunc("GET "+base+"/{key...}", s.handleDocument)

	return s
}

// Handle mounts an additional GET handler, such as a metrics endpoint.
// It takes precedence over document keys of the same name.
func (s *Server) Handle(path string, h http.Handler) {
	s.mux.Handle("GET "+path, h)
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving HTTP requests and blocks until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", s.addr, "path", s.path)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown gracefully stops the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down server")
	return s.server.Shutdown(ctx)
}

// handleDocument writes the document, or the value under the key path.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = DefaultFormat
	}
	c, err := s.codecs.ByName(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	keys, err := splitKey(strings.TrimPrefix(r.URL.EscapedPath(), s.base))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, ok := s.doc.Lookup(keys...)
	if !ok {
		http.Error(w, fmt.Sprintf("key %q not found", strings.Join(keys, "/")), http.StatusNotFound)
		return
	}

	body, err := codec.EncodeValue(c, value)
	if err != nil {
		slog.Error("failed to encode response", "key", keys, "format", format, "error", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	slog.Debug("served document", "key", keys, "format", format, "remote", r.RemoteAddr)
	w.Header().Set("Content-Type", contentType(c.Name()))
	_, _ = w.Write(body)
}

// splitKey splits an escaped request path into keys. A key containing "/"
// is addressed by escaping it as %2F.
func splitKey(escaped string) ([]string, error) {
	var keys []string
	for part := range strings.SplitSeq(escaped, "/") {
		if part == "" {
			continue
		}
		key, err := url.PathUnescape(part)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: %w", part, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func contentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "toml":
		return "application/toml"
	default:
		return "application/yaml"
	}
}
