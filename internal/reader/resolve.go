package reader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/neox5/datareader/internal/document"
	"github.com/neox5/datareader/internal/render"
)

// Resolve returns the location for identifier. Absolute identifiers are
// returned unchanged; relative ones are joined onto the current data path.
// No existence check is made.
func (r *Reader) Resolve(identifier string) string {
	if filepath.IsAbs(identifier) {
		return identifier
	}
	return filepath.Join(r.DataPath(), identifier)
}

// loadOne reads, renders, decodes and include-expands a single document.
// A location that does not exist yields a nil document.
func (r *Reader) loadOne(identifier string, tr trail) (document.Document, error) {
	location := r.Resolve(identifier)
	key := filepath.Clean(location)
	if tr.contains(key) {
		return nil, tr.cycle(key)
	}

	if _, err := os.Stat(location); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("document missing", "file", identifier, "location", location)
			r.observer.DocumentMissing(location)
			return nil, nil
		}
		return nil, tr.error(ErrRead, err)
	}

	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, tr.error(ErrRead, err)
	}

	tr = tr.push(key)

	text, err := r.renderer.Render(location, raw, render.Context{
		DataPath: r.DataPath(),
		File:     identifier,
		Location: location,
		Dir:      filepath.Dir(location),
		Vars:     r.vars,
	})
	if err != nil {
		return nil, tr.error(ErrTemplate, err)
	}

	doc, err := r.codecs.ForPath(location).Decode(text)
	if err != nil {
		return nil, tr.error(ErrParse, err)
	}

	r.logger.Debug("document loaded", "file", identifier, "location", location)
	r.observer.DocumentLoaded(location)

	if doc == nil {
		return nil, nil
	}

	if err := r.resolveIncludes(doc, tr); err != nil {
		return nil, err
	}
	return doc, nil
}
