// Package document defines the mapping type produced by parsing a data file
// and the merge rules applied when documents are combined.
package document

import (
	"encoding/json"
	"fmt"
	"maps"
)

// IncludeKey is the reserved mapping key that pulls other documents into the
// mapping that contains it.
const IncludeKey = "_include_"

// Document is a parsed data file.
//
// Values are one of: a scalar (string, bool, int, int64, uint64, float64,
// time.Time or nil), a sequence ([]any) or a nested Document. Normalize
// produces this shape from arbitrary decoder output.
type Document map[string]any

// Normalize converts decoder output into a Document.
// A nil input returns nil (no data). A non-mapping root is an error.
func Normalize(v any) (Document, error) {
	if v == nil {
		return nil, nil
	}

	n := normalizeValue(v)
	doc, ok := n.(Document)
	if !ok {
		return nil, fmt.Errorf("document root must be a mapping, got %T", v)
	}
	return doc, nil
}

// normalizeValue walks a decoded value and rewrites mappings into Documents.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case Document:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case map[string]any:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case map[any]any:
		out := make(Document, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// Merge copies every key of src into d, replacing values already present.
// Nested mappings are replaced whole, never merged recursively.
func (d Document) Merge(src Document) {
	maps.Copy(d, src)
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return normalizeValue(d).(Document)
}

// Lookup walks nested mappings following path.
// An empty path returns the document itself.
func (d Document) Lookup(path ...string) (any, bool) {
	var cur any = d
	for _, key := range path {
		m, ok := cur.(Document)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
