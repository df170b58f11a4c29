// Package buildinfo exposes version and build identification for gamemoded.
// Both variables are overridden at link-time with -ldflags.
package buildinfo

// Version is set at link-time with -ldflags.
var Version = "v0.2.0"

// Commit is set at link-time with -ldflags.
// Default is "unknown" so tests and "go run ." still work.
var Commit = "unknown"
