// Package version holds the routesync build identity.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X routesync/internal/version.Version=0.3.0 -X routesync/internal/version.Commit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// revision returns Commit, falling back to the VCS revision stamped by the
// go tool when the binary was built from a checkout.
func revision() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

// Info returns the version with an abbreviated commit when one is known.
func Info() string {
	if c := revision(); c != "unknown" && len(c) > 7 {
		return Version + " (" + c[:7] + ")"
	}
	return Version
}

// Full returns the multi-line report printed by `routesync version`.
func Full() string {
	return fmt.Sprintf("routesync version %s\nCommit: %s\nBuilt: %s\nGo: %s %s/%s",
		Version, revision(), BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Details is the machine-readable form of Full.
type Details struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Current returns the Details of the running binary.
func Current() Details {
	return Details{
		Version:   Version,
		Commit:    revision(),
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
