package config

import (
	"fmt"
	"strings"

	"github.com/neox5/datareader/internal/codec"
	"github.com/neox5/datareader/internal/document"
)

// Validate performs syntactic validation on raw config
func Validate(raw *RawConfig) error {
	return validateRawSyntax(raw)
}

// validateRawSyntax performs basic syntactic validation on raw config
func validateRawSyntax(raw *RawConfig) error {
	// Validate output format
	if raw.Output != "" {
		if _, err := codec.Default().ByName(raw.Output); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}

	// Validate file identifiers
	for i, file := range raw.Files {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("file at index %d: identifier cannot be empty", i)
		}
		if strings.Contains(file, ",") {
			return fmt.Errorf("file at index %d: %q contains a comma; list files separately", i, file)
		}
	}

	// Validate variable names
	for name := range raw.Vars {
		if name == "" {
			return fmt.Errorf("vars: name cannot be empty")
		}
		if name == document.IncludeKey {
			return fmt.Errorf("vars: %q is reserved", name)
		}
	}

	return nil
}
