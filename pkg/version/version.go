// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/Sumatoshi-tech/fleetlens/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = ""
)

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the build metadata, falling back to the VCS stamp of the
// module build when no commit was injected.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}

	if info.Commit != "<unknown>" {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
		case "vcs.time":
			if info.Date == "" {
				info.Date = setting.Value
			}
		}
	}

	return info
}

// String formats the metadata on one line.
func (i Info) String() string {
	return fmt.Sprintf("fleetlens %s (commit %s, %s)", i.Version, i.Commit, i.GoVersion)
}
