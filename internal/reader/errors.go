package reader

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrRead reports a document that exists but could not be read.
	ErrRead = errors.New("read failed")
	// ErrTemplate reports malformed template syntax or a failed render.
	ErrTemplate = errors.New("template error")
	// ErrParse reports text that does not decode into a mapping.
	ErrParse = errors.New("parse error")
	// ErrInvalidInclude reports an include directive that is not an
	// identifier or a sequence of identifiers.
	ErrInvalidInclude = errors.New("invalid include directive")
	// ErrIncludeCycle reports a document that includes itself, directly or
	// through other documents.
	ErrIncludeCycle = errors.New("include cycle")
)

// trail is the stack of locations being loaded, outermost first.
type trail []string

func (t trail) push(location string) trail {
	// Copy so sibling includes never share a backing array.
	next := make(trail, len(t), len(t)+1)
	copy(next, t)
	return append(next, location)
}

func (t trail) contains(location string) bool {
	return slices.Contains(t, location)
}

// error wraps err with kind and appends the trail, innermost document first.
func (t trail) error(kind, err error) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: %w", kind, err)
	}

	var b strings.Builder
	for i := len(t) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "\n  in document %q", t[i])
	}
	return fmt.Errorf("%w: %w%s", kind, err, b.String())
}

// cycle builds the error for a location that is already being loaded.
func (t trail) cycle(location string) error {
	start := slices.Index(t, location)
	chain := append(slices.Clone(t[start:]), location)
	return t.error(ErrIncludeCycle, errors.New(strings.Join(chain, " -> ")))
}
