// Package version provides build version information for the sidecar binary.
package version

var (
	// version is the semantic version (injected at build time via ldflags).
	version = "0.0.1"
	// commit is the git commit hash (injected at build time via ldflags).
	commit = "none"
	// buildDate is the build timestamp (injected at build time via ldflags).
	buildDate = "unknown"
)

// Version returns the semantic version string.
func Version() string {
	return version
}

// String returns formatted version information.
func String() string {
	return version + " (commit: " + commit + ", built: " + buildDate + ")"
}
