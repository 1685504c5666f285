package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2025-06-01T12:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	tests := []struct {
		name        string
		version     string
		commit      string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
	}{
		{name: "from vcs", settings: settings, wantVersion: "dev-20250601", wantCommit: "0123456-dirty"},
		{name: "ldflags win", version: "v1.0.0", commit: "abc", settings: settings, wantVersion: "v1.0.0", wantCommit: "abc"},
		{name: "short revision", settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}}, wantCommit: "abc"},
		{name: "bad time", settings: []debug.BuildSetting{{Key: "vcs.time", Value: "yesterday"}}},
		{name: "no settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c := fromSettings(tt.version, tt.commit, tt.settings)
			if v != tt.wantVersion || c != tt.wantCommit {
				t.Errorf("fromSettings() = (%q, %q), want (%q, %q)", v, c, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.Commit == "" {
		t.Errorf("Get() left fields empty: %+v", info)
	}
	if !strings.HasPrefix(info.String(), "infoclient "+info.Version) {
		t.Errorf("String() = %q", info.String())
	}
	if !strings.Contains(Full(), info.Commit) {
		t.Errorf("Full() = %q, want commit %q", Full(), info.Commit)
	}
}
