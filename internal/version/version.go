// Package version exposes build metadata stamped in through ldflags.
package version

var (
	// Version is the release version of the svtrace build
	Version = "dev"
	// GitSHA is the source commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is when the binary was built
	BuildTime = "unknown"
)
