package codec

import (
	"testing"

	"github.com/neox5/datareader/internal/document"
	"github.com/stretchr/testify/require"
)

func TestRegistryForPath(t *testing.T) {
	r := Default()

	tests := []struct {
		location string
		want     string
	}{
		{"data/a.yml", "yaml"},
		{"data/a.YAML", "yaml"},
		{"/abs/b.json", "json"},
		{"c.jsonc", "json"},
		{"d.toml", "toml"},
		{"no_extension", "yaml"},
		{"e.txt", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			require.Equal(t, tt.want, r.ForPath(tt.location).Name())
		})
	}
}

func TestRegistryByName(t *testing.T) {
	r := Default()

	c, err := r.ByName("TOML")
	require.NoError(t, err)
	require.Equal(t, "toml", c.Name())

	_, err = r.ByName("xml")
	require.ErrorContains(t, err, "json, toml, yaml")
}

func TestYAMLDecode(t *testing.T) {
	doc, err := YAML{}.Decode([]byte(`
name: demo
count: 3
enabled: true
empty:
nested:
  inner:
    key: value
list:
  - one
  - two: 2
`))
	require.NoError(t, err)

	require.Equal(t, "demo", doc["name"])
	require.Equal(t, 3, doc["count"])
	require.Equal(t, true, doc["enabled"])
	require.Nil(t, doc["empty"])

	v, ok := doc.Lookup("nested", "inner", "key")
	require.True(t, ok)
	require.Equal(t, "value", v)

	list := doc["list"].([]any)
	require.Equal(t, "one", list[0])
	require.Equal(t, document.Document{"two": 2}, list[1])
}

func TestYAMLDecodeEmpty(t *testing.T) {
	for _, in := range []string{"", "   \n\n", "# only a comment\n", "~\n"} {
		doc, err := YAML{}.Decode([]byte(in))
		require.NoError(t, err, "input %q", in)
		require.Nil(t, doc, "input %q", in)
	}
}

func TestYAMLDecodeErrors(t *testing.T) {
	_, err := YAML{}.Decode([]byte("a: [unclosed\n"))
	require.ErrorContains(t, err, "failed to parse YAML")

	_, err = YAML{}.Decode([]byte("- just\n- a list\n"))
	require.ErrorContains(t, err, "must be a mapping")
}

func TestJSONDecodeWithComments(t *testing.T) {
	doc, err := JSON{}.Decode([]byte(`{
  // comment
  "a": 1,
  "b": 2.5,
  "c": {"d": [true, null]},
}`))
	require.NoError(t, err)

	require.Equal(t, int64(1), doc["a"])
	require.Equal(t, 2.5, doc["b"])
	require.Equal(t, document.Document{"d": []any{true, nil}}, doc["c"])
}

func TestJSONDecodeEmptyAndNull(t *testing.T) {
	doc, err := JSON{}.Decode([]byte("  "))
	require.NoError(t, err)
	require.Nil(t, doc)

	doc, err = JSON{}.Decode([]byte("null"))
	require.NoError(t, err)
	require.Nil(t, doc)

	_, err = JSON{}.Decode([]byte(`{"a":`))
	require.ErrorContains(t, err, "failed to parse JSON")
}

func TestTOMLDecode(t *testing.T) {
	doc, err := TOML{}.Decode([]byte(`
title = "demo"
port = 8080

[server]
host = "localhost"
`))
	require.NoError(t, err)

	require.Equal(t, "demo", doc["title"])
	require.Equal(t, int64(8080), doc["port"])
	require.Equal(t, document.Document{"host": "localhost"}, doc["server"])

	doc, err = TOML{}.Decode(nil)
	require.NoError(t, err)
	require.Nil(t, doc)

	_, err = TOML{}.Decode([]byte("= broken"))
	require.ErrorContains(t, err, "failed to parse TOML")
}

func TestEncodeRoundTripsThroughEachFormat(t *testing.T) {
	doc := document.Document{
		"name":   "demo",
		"nested": document.Document{"key": "value"},
	}

	for _, c := range []Codec{YAML{}, JSON{}, TOML{}} {
		t.Run(c.Name(), func(t *testing.T) {
			out, err := c.Encode(doc)
			require.NoError(t, err)

			back, err := c.Decode(out)
			require.NoError(t, err)
			require.Equal(t, "demo", back["name"])

			v, ok := back.Lookup("nested", "key")
			require.True(t, ok)
			require.Equal(t, "value", v)
		})
	}
}

func TestEncodeValueWrapsNonMappings(t *testing.T) {
	out, err := EncodeValue(JSON{}, []any{"a", "b"})
	require.NoError(t, err)
	require.JSONEq(t, `{"value": ["a", "b"]}`, string(out))

	out, err = EncodeValue(JSON{}, document.Document{"k": "v"})
	require.NoError(t, err)
	require.JSONEq(t, `{"k": "v"}`, string(out))

	out, err = EncodeValue(JSON{}, document.Document(nil))
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(out))
}
