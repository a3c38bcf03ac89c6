// Package version holds build metadata shared by the server and the CLI.
package version

// Set with -ldflags "-X github.com/stwalsh4118/devrights/internal/version.Version=..."
var (
	Version = "0.1.0"
	Commit  = "unknown"
)

// String formats the version with its commit.
func String() string {
	return Version + " (" + Commit + ")"
}
