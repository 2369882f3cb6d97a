// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build for logs, e.g. "1.4.0 (3f2a9c1, 2024-05-01)".
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}

// UserAgent identifies feedex on outbound HTTP requests.
func UserAgent() string {
	return "feedex/" + Version
}
