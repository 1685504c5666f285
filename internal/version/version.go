// Package version reports the infoclient build version.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Set at build time via ldflags:
//
//	go build -ldflags="-X github.com/muurk/infoclient/internal/version.Version=v1.0.0 \
//	                   -X github.com/muurk/infoclient/internal/version.Commit=abc123"
//
// Anything left empty is filled from the module's VCS build settings.
var (
	Version = ""
	Commit  = ""
)

// Info describes the running binary
type Info struct {
	Version   string
	Commit    string
	GoVersion string
	Platform  string
}

func init() {
	if Version == "" || Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			Version, Commit = fromSettings(Version, Commit, info.Settings)
		}
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromSettings fills an empty version or commit from vcs.* build settings.
// The commit is shortened to 7 characters and marked -dirty for modified
// trees; the version becomes dev-YYYYMMDD from the commit time.
func fromSettings(version, commit string, settings []debug.BuildSetting) (string, string) {
	var revision, modified, vcsTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if commit == "" && revision != "" {
		commit = revision
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if modified == "true" {
			commit += "-dirty"
		}
	}

	if version == "" && vcsTime != "" {
		if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
			version = "dev-" + t.Format("20060102")
		}
	}
	return version, commit
}

// Get returns the version information of the running binary
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Full returns the version string including commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// String formats i as printed by the version command
func (i Info) String() string {
	return fmt.Sprintf("infoclient %s (commit: %s, %s, %s)", i.Version, i.Commit, i.GoVersion, i.Platform)
}
