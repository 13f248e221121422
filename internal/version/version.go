package version

// Build-time variables (set via ldflags)
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// GetVersion returns the build-time version.
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with the commit appended when known.
func GetFullVersion() string {
	if Commit != "unknown" {
		return Version + "+" + Commit
	}
	return Version
}
