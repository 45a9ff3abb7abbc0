// Package render preprocesses raw data files with text/template before they
// are parsed.
//
// Templates only see the explicit Context passed to Render. Missing keys are
// errors rather than silently rendering "<no value>".
package render

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// Context is the data visible to a template as dot.
type Context struct {
	// DataPath is the loader's configured data directory.
	DataPath string
	// File is the identifier as written by the caller or include directive.
	File string
	// Location is the resolved path being rendered.
	Location string
	// Dir is the directory containing Location.
	Dir string
	// Vars holds caller-supplied values.
	Vars map[string]any
}

// Engine renders documents. The zero value is ready to use.
type Engine struct {
	funcs template.FuncMap
}

// New creates an engine with the default helpers plus extra functions.
func New(extra template.FuncMap) *Engine {
	funcs := defaultFuncs()
	for name, fn := range extra {
		funcs[name] = fn
	}
	return &Engine{funcs: funcs}
}

// Render executes text as a template named name against ctx.
func (e *Engine) Render(name string, text []byte, ctx Context) ([]byte, error) {
	funcs := e.funcs
	if funcs == nil {
		funcs = defaultFuncs()
	}
	if ctx.Vars == nil {
		ctx.Vars = map[string]any{}
	}

	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"env":     os.Getenv,
		"default": defaultValue,
	}
}

// defaultValue returns fallback when value is empty. Written for pipelines:
// {{ env "HOME" | default "/root" }}.
func defaultValue(fallback, value any) any {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok && s == "" {
		return fallback
	}
	return value
}
