// Package version holds build information injected at link time.
package version

import (
	"runtime/debug"
	"sync"
)

// Build information set via -ldflags "-X ...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	devVersion      = "dev"
	develBuild      = "(devel)"
	vcsRevisionKey  = "vcs.revision"
	vcsTimeKey      = "vcs.time"
	shortCommitSize = 12
)

var initOnce sync.Once

// InitBinaryVersion fills unset build information from the module build
// info when the binary was built without ldflags, for example by go install.
func InitBinaryVersion() {
	initOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}

		applyBuildInfo(info)
	})
}

func applyBuildInfo(info *debug.BuildInfo) {
	if Version == devVersion && info.Main.Version != "" && info.Main.Version != develBuild {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case vcsRevisionKey:
			if Commit == "none" && s.Value != "" {
				Commit = s.Value[:min(len(s.Value), shortCommitSize)]
			}
		case vcsTimeKey:
			if Date == "unknown" && s.Value != "" {
				Date = s.Value
			}
		}
	}
}

// String returns the one-line version banner.
func String() string {
	return "memefang " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
