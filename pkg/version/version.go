package version

import "runtime/debug"

const defaultVersion = "v0.1.0"

// Version is the semantic version of the build, set at build time via ldflags
var Version = defaultVersion

// GetVersion returns the version string. Without ldflags, builds installed
// with go install report their module version.
func GetVersion() string {
	if Version != defaultVersion {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}
