package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldVersion, oldCommit, oldDate })

	fromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	if Version != "v1.2.3" {
		t.Errorf("Version = %q, want v1.2.3", Version)
	}
	if Commit != "0123456" {
		t.Errorf("Commit = %q, want 0123456", Commit)
	}
	if Date != "2026-01-02T03:04:05Z" {
		t.Errorf("Date = %q", Date)
	}

	info := Info()
	if !strings.HasPrefix(info, "pgquery v1.2.3 (commit: 0123456, built: 2026-01-02T03:04:05Z)") {
		t.Errorf("Info() = %q", info)
	}
	if !strings.HasSuffix(info, runtime.Version()) {
		t.Errorf("Info() = %q, want Go version suffix", info)
	}
}

func TestFromBuildInfo_Devel(t *testing.T) {
	oldVersion := Version
	t.Cleanup(func() { Version = oldVersion })

	Version = "dev"
	fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if Short() != "dev" {
		t.Errorf("Short() = %q, want dev", Short())
	}
}
