// Package pkg contains application-level metadata shared by the CLI.
package pkg

var (
	// Version is set by build flags.
	Version = "v0.1.0"

	// Build is a timestamp set by build flags.
	Build = "n/a"
)
