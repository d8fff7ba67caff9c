// Package version holds build metadata stamped in via -ldflags.
package version

import "fmt"

var (
	// Version is the release version, "dev" for unstamped builds.
	Version = "dev"
	// GitSHA is the git commit SHA.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String formats the build metadata for -version output.
func String() string {
	return fmt.Sprintf("polymer-report %s (%s, built %s)", Version, GitSHA, BuildTime)
}
