// Package version reports the build version of datareader.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// String returns the version for display. Binaries built with go install
// report their module version when no ldflags were given.
func String() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s)", Version, Commit)
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}
