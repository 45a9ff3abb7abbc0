package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/neox5/datareader/internal/document"
	"github.com/tidwall/jsonc"
)

// JSON handles JSON documents. Comments and trailing commas (JSONC) are
// accepted on decode.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Decode(data []byte) (document.Document, error) {
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return document.Normalize(raw)
}

func (JSON) Encode(doc document.Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(out, '\n'), nil
}
