// Package version exposes the build version string for logs and reports.
package version

import "runtime/debug"

var version = "dev"

// Version returns the module version from build info when available,
// falling back to the locally-set string.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		return info.Main.Version
	}
	return version
}

// Set assigns the version for builds without module info (e.g. local dev).
func Set(v string) {
	if v != "" {
		version = v
	}
}
