// Package version holds build metadata for the cyclocalc binary.
package version

import (
	"runtime/debug"
)

const unknown = "<unknown>"

// Build metadata, set with -ldflags "-X" at release time.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// BinaryGitHash is the Git hash of the cyclocalc binary which is executing.
var BinaryGitHash = unknown

// InitBinaryVersion fills values left unset by the linker from the module
// build info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}

	BinaryGitHash = Commit
}
