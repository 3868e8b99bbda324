// Package version carries the build identity of the track viewer,
// shown in the About dialog and the startup log.
package version

// Stamped by the release build via
// -ldflags "-X track-viewer/internal/version.Version=...".
var (
	// Version is the viewer's semantic version.
	Version = "0.1.0"

	// GitCommit is the abbreviated commit the binary was built from.
	GitCommit = "unknown"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)
