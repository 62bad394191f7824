package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

//nolint:gochecknoglobals // Overridden through ldflags at build time.
var (
	// Version is the release of the build.
	Version = "0.1.0"
	// Commit is the short git SHA, filled from the VCS stamp when not injected.
	Commit = "none"
	// BuildTime is the UTC build timestamp, filled from the VCS stamp when not injected.
	BuildTime = "unknown"
)

const shortCommitLength = 7

//nolint:gochecknoglobals // Resolved once per process.
var fromBuildInfo = sync.OnceFunc(func() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "none" && setting.Value != "" {
				Commit = setting.Value[:min(len(setting.Value), shortCommitLength)]
			}
		case "vcs.time":
			if BuildTime == "unknown" && setting.Value != "" {
				BuildTime = setting.Value
			}
		}
	}
})

// Short returns only the release string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit, build time and toolchain.
func Full() string {
	fromBuildInfo()

	return fmt.Sprintf("sleep-alarm %s, commit: %s, built at: %s, %s", Version, Commit, BuildTime, runtime.Version())
}

// LogFields returns the build metadata as logger key-value pairs.
func LogFields() []any {
	fromBuildInfo()

	return []any{"version", Version, "commit", Commit, "build_time", BuildTime}
}
