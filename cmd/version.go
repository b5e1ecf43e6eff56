// Package cmd holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/thoreinstein/relx/cmd.Version=1.2.3"
package cmd

import "fmt"

// Build-time variables set via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// String renders the build metadata the way `relx version` prints it.
func String() string {
	return fmt.Sprintf("relx version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
