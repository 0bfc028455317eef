// Package version carries build metadata for routeglass.
package version

import "strings"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/routeglass/routeglass/pkg/version.Version=v0.3.0 \
//	  -X github.com/routeglass/routeglass/pkg/version.GitCommit=abc1234 \
//	  -X github.com/routeglass/routeglass/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a formatted version string for display.
func Info() string {
	return Version + " (" + GitCommit + ") built " + BuildDate
}

// SSHClientVersion is the identification string sent to devices, so
// router logs show which tool logged in. Spaces are not allowed in it.
func SSHClientVersion() string {
	return "SSH-2.0-routeglass_" + strings.ReplaceAll(Version, " ", "_")
}
