package version

import "fmt"

// Version information - set via ldflags during build:
//
//	-X notekeeper/internal/version.Version=v1.2.3
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Info represents version information
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

// GetInfo returns the current version information
func GetInfo() Info {
	return Info{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("notekeeper %s (commit %s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}
