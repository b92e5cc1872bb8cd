// Package version provides build-time version information.
package version

// Set at build time with -ldflags "-X fspdf/internal/version.Version=...".
var (
	Version   = "0.2.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version line printed by --version.
func String() string {
	return "fspdf " + Version + " (" + GitCommit + ", built " + BuildTime + ")"
}
