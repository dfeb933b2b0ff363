// Package version carries build metadata stamped in with -ldflags, e.g.
//
//	-X github.com/helpdesk-io/helpdesk-web/internal/version.Version=v1.4.0
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// Full is the one-line banner printed by the version command.
func Full() string {
	i := GetInfo()
	return fmt.Sprintf("helpdesk-web %s (commit: %s, built: %s, %s)", i.Version, i.GitCommit, i.BuildDate, i.GoVersion)
}

// UserAgent is sent to the backend when none is configured.
func UserAgent() string {
	return "helpdesk-web/" + Version
}
