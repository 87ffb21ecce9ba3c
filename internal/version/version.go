// Package version reports the build identity of the shiftdesk binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags.
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the resolved build identity.
type Info struct {
	Commit    string
	BuildTime string
	Modified  bool
}

// Get resolves the build identity. Values injected through ldflags win;
// otherwise the VCS stamp embedded by the Go toolchain is used.
func Get() Info {
	info := Info{Commit: Commit, BuildTime: BuildTime}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String returns the version string (commit-hash based, no semver).
func String() string {
	return Get().String()
}

func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("shiftdesk dev (commit: %s, built: %s)", commit, i.BuildTime)
}
