package codec

import (
	"fmt"

	"github.com/neox5/datareader/internal/document"
	"go.yaml.in/yaml/v4"
)

// YAML is the default codec.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

// Decode parses a single YAML document. Tags are decoded as plain data; no
// constructor runs for them.
func (YAML) Decode(data []byte) (document.Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return document.Normalize(raw)
}

func (YAML) Encode(doc document.Document) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return out, nil
}
