// Package buildinfo holds version metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/theirongolddev/paysplit/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

var (
	// Version is set via ldflags during build.
	Version = "dev"
	// Commit is set via ldflags during build.
	Commit = "none"
	// Date is set via ldflags during build.
	Date = "unknown"
)

// String formats the version line shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
