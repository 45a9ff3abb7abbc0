package codec

import (
	"bytes"
	"fmt"

	"github.com/neox5/datareader/internal/document"
	"github.com/pelletier/go-toml/v2"
)

// TOML handles TOML documents.
type TOML struct{}

func (TOML) Name() string { return "toml" }

func (TOML) Decode(data []byte) (document.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return document.Normalize(raw)
}

func (TOML) Encode(doc document.Document) ([]byte, error) {
	// go-toml walks map[string]any, not named map types.
	out, err := toml.Marshal(plain(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}
	return out, nil
}

// plain converts nested Documents back into map[string]any.
func plain(v any) any {
	switch t := v.(type) {
	case document.Document:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plain(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plain(val)
		}
		return out
	default:
		return v
	}
}
