// Package version provides information about the build version of the engine.
package version

// BuildInfo holds version information about the engine build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'rabbithole/internal/core/version.version=v0.0.1'
	// -X 'rabbithole/internal/core/version.commit=abcd' -X 'rabbithole/internal/core/version.date=2025-09-02'"
	return BuildInfo{
		Service: "rabbithole",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders the build info as a single identifier, e.g. "rabbithole dev (none)"
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
