// Package version exposes build metadata for the homie binaries.
package version

// Stamped via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)
