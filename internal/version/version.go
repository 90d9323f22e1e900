package version

import "fmt"

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/autodocs/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is printed by --version.
func String() string {
	return fmt.Sprintf("autodocs %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
