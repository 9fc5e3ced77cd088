package common

import "fmt"

// Version information is stamped at build time via -ldflags, for example:
//
//	-X github.com/ternarybob/valeo/internal/common.Version=1.2.0
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Build     string `json:"build"`
	GitCommit string `json:"git_commit"`
}

// CurrentBuild returns the stamped build metadata.
func CurrentBuild() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Build:     Build,
		GitCommit: GitCommit,
	}
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with build and commit details
func GetFullVersion() string {
	return fmt.Sprintf("%s (build %s, commit %s)", Version, Build, GitCommit)
}
