package reader

import (
	"fmt"

	"github.com/neox5/datareader/internal/document"
)

// resolveIncludes expands the include directive of doc and of every nested
// mapping, in place. Included data overrides the literal keys of the mapping
// that holds the directive. Sequences are not walked.
func (r *Reader) resolveIncludes(doc document.Document, tr trail) error {
	if value, ok := doc[document.IncludeKey]; ok {
		targets, err := includeTargets(value)
		if err != nil {
			return tr.error(ErrInvalidInclude, err)
		}

		included := document.Document{}
		for _, target := range targets {
			r.logger.Debug("expanding include", "target", target)
			r.observer.IncludeExpanded(target)

			data, err := r.loadList(target, tr)
			if err != nil {
				return err
			}
			included.Merge(data)
		}

		delete(doc, document.IncludeKey)
		doc.Merge(included)
	}

	for _, value := range doc {
		nested, ok := value.(document.Document)
		if !ok {
			continue
		}
		if err := r.resolveIncludes(nested, tr); err != nil {
			return err
		}
	}
	return nil
}

// includeTargets normalizes a directive value into identifiers. Nested
// sequences are flattened in order.
func includeTargets(value any) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []any:
		var targets []string
		for i, item := range v {
			inner, err := includeTargets(item)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			targets = append(targets, inner...)
		}
		return targets, nil
	default:
		return nil, fmt.Errorf("%s must be an identifier or a list of identifiers, got %T", document.IncludeKey, value)
	}
}
