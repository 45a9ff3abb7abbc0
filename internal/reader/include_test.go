package reader

import (
	"path/filepath"
	"testing"

	"github.com/neox5/datareader/internal/document"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) document.Document {
	t.Helper()
	dir, err := filepath.Abs("testdata")
	require.NoError(t, err)

	r := New(WithDataPath(dir))
	doc, err := r.Load("with_includes.yml")
	require.NoError(t, err)
	require.NotNil(t, r.Contents())
	return doc
}

func TestFixtureIncludes(t *testing.T) {
	doc := loadFixture(t)

	tests := []struct {
		name string
		path []string
		want any
	}{
		{"included file", []string{"include1", "keyn1"}, "Value 1"},
		{"chained included file", []string{"include_chain1", "key_chain_1"}, "chain 1"},
		{"include directive in a mapping", []string{"include_nested", "keyn_1"}, "Value nested 1"},
		{"chained include directive", []string{"second_chain1", "skey_chain_1"}, "schain 1"},
		{"nested include directive", []string{"include_nested", "nested_key", "nested_value", "deep_nested_key"}, "deep nested value"},
		{"literal key kept", []string{"title"}, "with includes"},
		{"chain root key", []string{"chain_root"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := doc.Lookup(tt.path...)
			require.True(t, ok)
			require.Equal(t, tt.want, got)
		})
	}

	requireNoIncludeKey(t, doc)
}

func TestIncludeOverridesLiteralKeys(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "a: 1\n_include_: b.yml\n",
		"b.yml": "a: 2\nb: 3\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{"a": 2, "b": 3}, doc)
}

func TestIncludeListOrder(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "k: literal\nonly_a: a\n_include_: [b.yml, c.yml]\n",
		"b.yml": "k: b\nkb: b\nshared: b\n",
		"c.yml": "shared: c\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{
		"k":      "b",
		"only_a": "a",
		"kb":     "b",
		"shared": "c",
	}, doc)
}

func TestIncludeCommaListInDirective(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "_include_: \"b.yml, c.yml\"\n",
		"b.yml": "x: b\ny: b\n",
		"c.yml": "x: c\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{"x": "c", "y": "b"}, doc)
}

func TestIncludeNestedSequenceIsFlattened(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "_include_:\n  - b.yml\n  - [c.yml, d.yml]\n",
		"b.yml": "v: b\n",
		"c.yml": "v: c\n",
		"d.yml": "v: d\nd: true\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{"v": "d", "d": true}, doc)
}

func TestNestedIncludeIsIndependent(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": `
top:
  keep: literal
  shared: literal
  _include_: nested.yml
other:
  shared: untouched
`,
		"nested.yml": "shared: nested\nadded: true\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{
		"top": document.Document{
			"keep":   "literal",
			"shared": "nested",
			"added":  true,
		},
		"other": document.Document{"shared": "untouched"},
	}, doc)
}

func TestChainedIncludesFlatten(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "from_a: 1\n_include_: b.yml\n",
		"b.yml": "from_b: 2\n_include_: c.yml\ndeep:\n  _include_: c.yml\n",
		"c.yml": "from_c: 3\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	requireNoIncludeKey(t, doc)
	require.Equal(t, document.Document{
		"from_a": 1,
		"from_b": 2,
		"from_c": 3,
		"deep":   document.Document{"from_c": 3},
	}, doc)
}

func TestIncludeInsideIncludedNestedMapping(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "_include_: b.yml\n",
		"b.yml": "section:\n  _include_: c.yml\n",
		"c.yml": "leaf: value\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{
		"section": document.Document{"leaf": "value"},
	}, doc)
}

func TestMissingIncludeTarget(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "a: 1\n_include_: missing.yml\nnested:\n  _include_: missing.yml\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{"a": 1, "nested": document.Document{}}, doc)
}

func TestSequencesAreNotWalked(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml": "items:\n  - _include_: b.yml\n",
		"b.yml": "b: 1\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{
		"items": []any{document.Document{document.IncludeKey: "b.yml"}},
	}, doc)
}

func TestIncludeRelativeToDataPath(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"sub/a.yml": "_include_: sub/b.yml\n",
		"sub/b.yml": "b: 1\n",
	})

	doc, err := r.Load("sub/a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{"b": 1}, doc)
}

func TestIncludeDiamondIsNotACycle(t *testing.T) {
	r, _ := newTestReader(t, map[string]string{
		"a.yml":      "_include_: [b.yml, c.yml]\n",
		"b.yml":      "_include_: shared.yml\nb: 1\n",
		"c.yml":      "_include_: shared.yml\nc: 1\n",
		"shared.yml": "shared: true\n",
	})

	doc, err := r.Load("a.yml")
	require.NoError(t, err)
	require.Equal(t, document.Document{"b": 1, "c": 1, "shared": true}, doc)
}

func TestIncludeCycle(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name:  "self",
			files: map[string]string{"a.yml": "_include_: a.yml\n"},
		},
		{
			name: "mutual",
			files: map[string]string{
				"a.yml": "_include_: b.yml\n",
				"b.yml": "_include_: a.yml\n",
			},
		},
		{
			name: "nested mapping",
			files: map[string]string{
				"a.yml": "x:\n  _include_: b.yml\n",
				"b.yml": "y:\n  _include_: c.yml\n",
				"c.yml": "_include_: a.yml\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestReader(t, tt.files)

			_, err := r.Load("a.yml")
			require.ErrorIs(t, err, ErrIncludeCycle)
			require.ErrorContains(t, err, "a.yml -> ")
			require.Nil(t, r.Contents())
		})
	}
}

func TestInvalidIncludeDirective(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"number", "_include_: 42\n"},
		{"null", "_include_:\n"},
		{"mapping", "_include_:\n  file: b.yml\n"},
		{"list with number", "_include_: [b.yml, 1]\n"},
		{"nested", "outer:\n  _include_: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestReader(t, map[string]string{
				"a.yml": tt.content,
				"b.yml": "b: 1\n",
			})

			_, err := r.Load("a.yml")
			require.ErrorIs(t, err, ErrInvalidInclude)
		})
	}
}

func TestIncludeErrorCarriesTrail(t *testing.T) {
	r, dir := newTestReader(t, map[string]string{
		"a.yml": "_include_: b.yml\n",
		"b.yml": "b: [broken\n",
	})

	_, err := r.Load("a.yml")
	require.ErrorIs(t, err, ErrParse)
	require.ErrorContains(t, err, `in document "`+filepath.Join(dir, "b.yml")+`"`)
	require.ErrorContains(t, err, `in document "`+filepath.Join(dir, "a.yml")+`"`)
}
