package version

var (
	// Set during the build process using ldflags
	Version   = "development"
	CommitSHA = "unknown"
)

// GetVersion returns the full version string
func GetVersion() string {
	return Version + " (" + CommitSHA + ")"
}
