// Package buildinfo exposes the version stamped into the binary.
//
// Release builds inject the variables via ldflags:
//
//	go build -ldflags "-X github.com/kehilahub/authgate/internal/infra/buildinfo.Version=v1.2.0"
package buildinfo

import "runtime"

var (
	// Version is the semantic version, "dev" outside release builds.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info is the build information in reportable form.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the stamped build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String renders a one-line version banner.
func String() string {
	return Version + " (" + Commit + ") built at " + BuildTime
}
