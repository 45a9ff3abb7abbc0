// Package codec decodes data files into documents and encodes documents back
// into text. The codec for a file is chosen by its extension.
package codec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/neox5/datareader/internal/document"
)

// Codec converts between text and documents.
type Codec interface {
	// Name returns the format name (yaml, json, toml).
	Name() string
	// Decode parses text into a document. Empty input decodes to nil.
	Decode(data []byte) (document.Document, error)
	// Encode renders a document as text.
	Encode(doc document.Document) ([]byte, error)
}

// Registry maps names and file extensions to codecs.
type Registry struct {
	byName   map[string]Codec
	byExt    map[string]Codec
	fallback Codec
}

// NewRegistry creates an empty registry that falls back to fallback for
// unknown extensions.
func NewRegistry(fallback Codec) *Registry {
	r := &Registry{
		byName:   make(map[string]Codec),
		byExt:    make(map[string]Codec),
		fallback: fallback,
	}
	if fallback != nil {
		r.byName[fallback.Name()] = fallback
	}
	return r
}

// Default returns a registry with the YAML, JSON and TOML codecs.
// YAML is used for unknown extensions.
func Default() *Registry {
	r := NewRegistry(YAML{})
	r.Register(YAML{}, ".yml", ".yaml")
	r.Register(JSON{}, ".json", ".jsonc")
	r.Register(TOML{}, ".toml")
	return r
}

// Register adds a codec under its name and the given extensions.
func (r *Registry) Register(c Codec, exts ...string) {
	r.byName[c.Name()] = c
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = c
	}
}

// ForPath returns the codec for a file location.
func (r *Registry) ForPath(location string) Codec {
	if c, ok := r.byExt[strings.ToLower(filepath.Ext(location))]; ok {
		return c
	}
	return r.fallback
}

// ByName returns the codec registered under name.
func (r *Registry) ByName(name string) (Codec, error) {
	c, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (must be one of %s)", name, strings.Join(r.Names(), ", "))
	}
	return c, nil
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EncodeValue renders any document value with c. Values that are not
// mappings are wrapped under a "value" key, since some formats require a
// mapping at the root.
func EncodeValue(c Codec, value any) ([]byte, error) {
	if doc, ok := value.(document.Document); ok {
		if doc == nil {
			doc = document.Document{}
		}
		return c.Encode(doc)
	}
	return c.Encode(document.Document{"value": value})
}
