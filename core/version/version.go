// Package version holds the build-time version string reported by the
// depgraph CLI's version command.
package version

// Version is overridden at build time via -ldflags; the default here is
// what a source checkout reports.
var Version = "dev"
