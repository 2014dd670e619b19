// Package buildinfo carries the version stamp for the ledgerbook binary.
// Release builds override these via -ldflags; a source build reports dev.
package buildinfo

var (
	// Version is the release tag, e.g. v0.3.0.
	Version = "dev"
	// Commit is the short git hash the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
